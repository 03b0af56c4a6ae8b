package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"BotDash/internal/chart"
	"BotDash/internal/domain/models"
	"BotDash/internal/domain/repository"
	"BotDash/pkg/logger"
	"BotDash/pkg/util"
)

const (
	PathBanditArms     = "/api/bandit/arms"
	PathBanditPulls    = "/api/bandit/pulls"
	PathBanditOverview = "/api/bandit/overview"
)

type BanditQuery struct {
	Symbol string
	Regime string
	Side   string
	Limit  int
}

type BanditArmRow struct {
	ID       string `json:"id"`
	PresetID string `json:"presetId"`
	Regime   string `json:"regime"`
	Side     string `json:"side"`
	Status   string `json:"status"`
	Role     string `json:"role"`
	Pulls    int64  `json:"pulls"`
	Mean     string `json:"mean"`
	Variance string `json:"variance"`
}

type BanditPullRow struct {
	Time        string `json:"timestamp"`
	ArmID       string `json:"armId"`
	DecisionID  string `json:"decisionId"`
	Reward      string `json:"reward"`
	PnLR        string `json:"pnlR"`
	SlippageBps string `json:"slippageBps"`
	FeesBps     string `json:"feesBps"`
	Role        string `json:"role"`
}

type BanditPanel struct {
	Algorithm      string          `json:"algorithm"`
	TotalPulls     int64           `json:"totalPulls"`
	CandidatePulls int64           `json:"candidatePulls"`
	CandidateShare string          `json:"candidateShare"`
	Arms           []BanditArmRow  `json:"arms"`
	Pulls          []BanditPullRow `json:"pulls"`
	Rewards        chart.Config    `json:"rewards"`
}

// BanditPanelService loads the allocator's bandit state.
type BanditPanelService struct {
	src repository.DataSource
	log *logger.Logger
}

func NewBanditPanelService(src repository.DataSource, log *logger.Logger) *BanditPanelService {
	if log == nil {
		log = logger.Nop()
	}
	return &BanditPanelService{src: src, log: log}
}

// FetchBandit loads arms, pulls and the overview concurrently. Pulls are scoped to one
// (regime, side) context and are skipped when either is unset.
func (s *BanditPanelService) FetchBandit(ctx context.Context, q BanditQuery) (*BanditPanel, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	var (
		arms     []models.BanditArm
		pulls    []models.BanditPull
		overview models.BanditOverview
	)

	armParams := url.Values{keySymbol: {q.Symbol}}
	if q.Regime != "" {
		armParams.Set("regime", q.Regime)
	}
	if q.Side != "" {
		armParams.Set(keySide, q.Side)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		arms, err = fetchList[models.WireBanditArm, models.BanditArm](gctx, s.src,
			RequestDescriptor{Path: PathBanditArms, Params: armParams})
		if err != nil {
			return fmt.Errorf("fetch bandit arms: %w", err)
		}
		return nil
	})
	if q.Regime != "" && q.Side != "" {
		g.Go(func() error {
			var err error
			pulls, err = fetchList[models.WireBanditPull, models.BanditPull](gctx, s.src, RequestDescriptor{
				Path: PathBanditPulls,
				Params: url.Values{
					keySymbol: {q.Symbol},
					"regime":  {q.Regime},
					keySide:   {q.Side},
					"limit":   {strconv.Itoa(q.Limit)},
				},
			})
			if err != nil {
				return fmt.Errorf("fetch bandit pulls: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		var err error
		overview, err = fetchOne[models.WireBanditOverview, models.BanditOverview](gctx, s.src,
			RequestDescriptor{Path: PathBanditOverview, Params: url.Values{keySymbol: {q.Symbol}}})
		if err != nil {
			return fmt.Errorf("fetch bandit overview: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error("bandit panel fetch failed", logger.String("symbol", q.Symbol), logger.Error(err))
		return nil, err
	}

	share := overview.CandidateShare
	return &BanditPanel{
		Algorithm:      overview.Algorithm,
		TotalPulls:     overview.TotalPulls,
		CandidatePulls: overview.CandidatePulls,
		CandidateShare: fmtPct(&share),
		Arms:           buildArmRows(arms),
		Pulls:          buildPullRows(pulls),
		Rewards:        rewardSeries(pulls),
	}, nil
}

// buildArmRows orders arms by mean reward, best first.
func buildArmRows(arms []models.BanditArm) []BanditArmRow {
	sorted := append([]models.BanditArm(nil), arms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Stats.Mean > sorted[j].Stats.Mean })

	rows := make([]BanditArmRow, 0, len(sorted))
	for _, a := range sorted {
		rows = append(rows, BanditArmRow{
			ID:       a.ID,
			PresetID: a.PresetID,
			Regime:   a.Regime,
			Side:     a.Side,
			Status:   a.Status,
			Role:     a.Role,
			Pulls:    a.Stats.Pulls,
			Mean:     util.FormatFloat(a.Stats.Mean, 4),
			Variance: util.FormatFloat(a.Stats.Variance, 4),
		})
	}
	return rows
}

func buildPullRows(pulls []models.BanditPull) []BanditPullRow {
	rows := make([]BanditPullRow, 0, len(pulls))
	for _, p := range pulls {
		t := placeholder
		if !p.Time.IsZero() {
			t = p.Time.UTC().Format(tradeTimeLayout)
		}
		rows = append(rows, BanditPullRow{
			Time:        t,
			ArmID:       p.ArmID,
			DecisionID:  p.DecisionID,
			Reward:      util.FormatOptional(p.Reward, 4, placeholder),
			PnLR:        fmtNum(p.PnLR),
			SlippageBps: fmtNum(p.SlippageBps),
			FeesBps:     fmtNum(p.FeesBps),
			Role:        p.Role,
		})
	}
	return rows
}

// rewardSeries plots realised rewards in time order; pulls without a reward or a
// timestamp are left out.
func rewardSeries(pulls []models.BanditPull) chart.Config {
	pts := make([]chart.Point, 0, len(pulls))
	for _, p := range pulls {
		if p.Reward == nil || p.Time.IsZero() {
			continue
		}
		pts = append(pts, chart.Point{X: p.Time, Y: *p.Reward})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X.Before(pts[j].X) })

	cfg := chart.Config{
		Kind:     chart.KindRewards,
		Type:     chart.TypeLine,
		Datasets: []chart.Dataset{lineDataset("Reward", "#6366f1", 1.2, pts, 0)},
	}
	for _, p := range pts {
		cfg.Labels = append(cfg.Labels, p.X)
	}
	return cfg
}
