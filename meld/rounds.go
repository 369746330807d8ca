package meld

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRound = errors.New("unknown round")
	ErrMissingSets  = errors.New("not enough sets")
	ErrMissingRuns  = errors.New("not enough runs")
	ErrMeldTooSmall = errors.New("meld is too small")
)

// FinalRound is the last round of a game. Its lay-down must clear the whole hand.
const FinalRound = 7

// Requirement is what a player must lay down, together, in a round
type Requirement struct {
	Cards int   `json:"cards"`
	Sets  []int `json:"sets"`
	Runs  []int `json:"runs"`
}

var requirements = map[int]Requirement{
	1: {Cards: 7, Sets: []int{3, 3}, Runs: []int{}},
	2: {Cards: 8, Sets: []int{3}, Runs: []int{4}},
	3: {Cards: 9, Sets: []int{}, Runs: []int{4, 4}},
	4: {Cards: 10, Sets: []int{3, 3, 3}, Runs: []int{}},
	5: {Cards: 11, Sets: []int{3, 3}, Runs: []int{4}},
	6: {Cards: 12, Sets: []int{3}, Runs: []int{4, 4}},
	7: {Cards: 13, Sets: []int{}, Runs: []int{}},
}

// RequirementFor returns the hand size and meld quota of a round
func RequirementFor(round int) (Requirement, error) {
	req, ok := requirements[round]
	if !ok {
		return Requirement{}, fmt.Errorf("%w: %d", ErrUnknownRound, round)
	}
	return req, nil
}

func (r Requirement) String() string {
	if len(r.Sets) == 0 && len(r.Runs) == 0 {
		return "lay down your whole hand at once"
	}

	parts := []string{}
	for _, size := range r.Sets {
		parts = append(parts, fmt.Sprintf("set of %d", size))
	}
	for _, size := range r.Runs {
		parts = append(parts, fmt.Sprintf("run of %d", size))
	}
	return strings.Join(parts, ", ")
}

// OneTurnBonus is added to the score of a player who goes out on the turn they first lay down
func OneTurnBonus(round int) int {
	return -10 * round
}

// ValidateGroup checks a batch of melds against the round's quota.
// Melds are matched to the required sizes in the order they were submitted.
// The final round has no quota.
func ValidateGroup(melds []Meld, round int) error {
	req, err := RequirementFor(round)
	if err != nil {
		return err
	}
	if round == FinalRound {
		return nil
	}

	sets, runs := []Meld{}, []Meld{}
	for _, m := range melds {
		if m.Type == Set {
			sets = append(sets, m)
		} else {
			runs = append(runs, m)
		}
	}

	if len(sets) < len(req.Sets) {
		return fmt.Errorf("%w: need %d, have %d", ErrMissingSets, len(req.Sets), len(sets))
	}
	if len(runs) < len(req.Runs) {
		return fmt.Errorf("%w: need %d, have %d", ErrMissingRuns, len(req.Runs), len(runs))
	}

	for i, size := range req.Sets {
		if len(sets[i].Cards) < size {
			return fmt.Errorf("%w: set %d needs at least %d cards", ErrMeldTooSmall, i+1, size)
		}
	}
	for i, size := range req.Runs {
		if len(runs[i].Cards) < size {
			return fmt.Errorf("%w: run %d needs at least %d cards", ErrMeldTooSmall, i+1, size)
		}
	}

	return nil
}
