package models

import "time"

type BanditArmStats struct {
	Pulls          int64
	Observations   int64
	Mean           float64
	Variance       float64
	EffectiveCount float64
}

// BanditArm is one preset competing in the allocator's multi-armed bandit.
type BanditArm struct {
	ID        string
	Symbol    string
	Regime    string
	Side      string
	PresetID  string
	Status    string
	Role      string
	Stats     BanditArmStats
	UpdatedAt *time.Time
}

// BanditPull is one arm selection and its realised reward.
type BanditPull struct {
	ID          string
	ArmID       string
	Time        time.Time
	DecisionID  string
	Reward      *float64
	PnLR        *float64
	SlippageBps *float64
	FeesBps     *float64
	Role        string
}

type BanditOverview struct {
	Algorithm      string
	CandidateShare float64
	TotalPulls     int64
	CandidatePulls int64
}
