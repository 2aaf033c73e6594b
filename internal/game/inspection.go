package game

import (
	"slices"

	"github.com/samber/lo"
)

type Vote string

const (
	VoteValid  Vote = "valid"
	VoteRotten Vote = "rotten"
)

func ParseVote(s string) (Vote, error) {
	switch v := Vote(s); v {
	case VoteValid, VoteRotten:
		return v, nil
	}
	return "", ErrInvalidVote
}

type Outcome int

const (
	Pending Outcome = iota
	Winner
	Rotten
)

func (o Outcome) String() string {
	switch o {
	case Winner:
		return "winner"
	case Rotten:
		return "rotten"
	}
	return "pending"
}

// Inspection is the verification of a BANANAS claim. Judges are fixed when the
// claim is made and only shrink when a judge leaves the room.
type Inspection struct {
	Candidate PlayerID
	Board     []Tile
	Judges    []PlayerID
	Votes     map[PlayerID]Vote
}

func newInspection(candidate PlayerID, board []Tile, judges []PlayerID) *Inspection {
	return &Inspection{
		Candidate: candidate,
		Board:     board,
		Judges:    judges,
		Votes:     make(map[PlayerID]Vote),
	}
}

func (in *Inspection) IsJudge(id PlayerID) bool {
	return slices.Contains(in.Judges, id)
}

func (in *Inspection) Tally() VoteTally {
	votes := lo.Values(in.Votes)
	return VoteTally{
		Valid:  lo.Count(votes, VoteValid),
		Rotten: lo.Count(votes, VoteRotten),
	}
}

// Threshold is the strict majority of the judge set.
func (in *Inspection) Threshold() int {
	return len(in.Judges)/2 + 1
}

// Resolve decides the inspection as soon as the outcome can no longer change.
func (in *Inspection) Resolve() Outcome {
	if len(in.Judges) == 0 {
		return Winner
	}
	threshold := in.Threshold()
	t := in.Tally()
	if t.Valid >= threshold {
		return Winner
	}
	uncast := len(in.Judges) - len(in.Votes)
	if t.Rotten >= threshold || t.Valid+uncast < threshold {
		return Rotten
	}
	return Pending
}

// removeJudge drops a departed judge together with any vote it cast.
func (in *Inspection) removeJudge(id PlayerID) bool {
	i := slices.Index(in.Judges, id)
	if i < 0 {
		return false
	}
	in.Judges = slices.Delete(in.Judges, i, i+1)
	delete(in.Votes, id)
	return true
}

func (in *Inspection) view(candidateName string) *InspectionView {
	votes := make(map[PlayerID]Vote, len(in.Votes))
	for k, v := range in.Votes {
		votes[k] = v
	}
	return &InspectionView{
		CandidateID:   in.Candidate,
		CandidateName: candidateName,
		Board:         slices.Clone(in.Board),
		Judges:        slices.Clone(in.Judges),
		Votes:         votes,
	}
}
