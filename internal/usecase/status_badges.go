package usecase

import (
	"fmt"

	"BotDash/internal/domain/models"
	"BotDash/pkg/util"
)

type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
	SeverityNeutral Severity = "neutral"
)

// VaR utilisation thresholds.
const (
	varWarnRatio  = 0.7
	varErrorRatio = 1.0
)

type Badge struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

// Badges is one badge per status sub-object. Absent sub-objects get NeutralBadge.
type Badges struct {
	Trading   Badge `json:"trading"`
	VaR       Badge `json:"var"`
	Drift     Badge `json:"drift"`
	Health    Badge `json:"health"`
	Allocator Badge `json:"allocator"`
}

// NeutralBadge stands in for a sub-object the backend did not send.
var NeutralBadge = Badge{Label: placeholder, Severity: SeverityNeutral}

func DeriveBadges(s models.StatusOverview) Badges {
	return Badges{
		Trading:   TradingBadge(s.Trading),
		VaR:       VaRBadge(s.VaR),
		Drift:     DriftBadge(s.Drift),
		Health:    HealthBadge(s.Health),
		Allocator: AllocatorBadge(s.Allocator),
	}
}

func TradingBadge(t *models.TradingStatus) Badge {
	switch {
	case t == nil:
		return NeutralBadge
	case t.KillSwitch || t.Mode == models.ModePaused:
		return Badge{Label: "Paused", Severity: SeverityError}
	case t.LiveEnabled:
		return Badge{Label: "Live", Severity: SeverityOK}
	case t.Mode == models.ModeLive:
		return Badge{Label: "Live (disabled)", Severity: SeverityWarn}
	default:
		return Badge{Label: "Shadow", Severity: SeverityWarn}
	}
}

// VaRBadge is neutral when the utilisation ratio is unknown.
func VaRBadge(v *models.VarStatus) Badge {
	if v == nil || v.Ratio == nil {
		return NeutralBadge
	}
	ratio := *v.Ratio
	sev := SeverityOK
	switch {
	case ratio >= varErrorRatio:
		sev = SeverityError
	case ratio >= varWarnRatio:
		sev = SeverityWarn
	}
	return Badge{Label: "VaR " + util.FormatFloat(ratio*100, 1) + "%", Severity: sev}
}

func DriftBadge(d *models.DriftStatus) Badge {
	if d == nil {
		return NeutralBadge
	}
	switch d.Stage {
	case models.DriftNormal:
		return Badge{Label: string(d.Stage), Severity: SeverityOK}
	case models.DriftReduced:
		return Badge{Label: string(d.Stage), Severity: SeverityWarn}
	default:
		label := string(d.Stage)
		if label == "" {
			label = "UNKNOWN"
		}
		return Badge{Label: label, Severity: SeverityError}
	}
}

func HealthBadge(h *models.HealthStatus) Badge {
	if h == nil {
		return NeutralBadge
	}
	label := "API errors " + placeholder
	if h.APIErrorRatePct != nil {
		label = fmt.Sprintf("API errors %s%%", util.FormatFloat(*h.APIErrorRatePct, 1))
	}
	if h.Healthy {
		return Badge{Label: "Healthy · " + label, Severity: SeverityOK}
	}
	return Badge{Label: "Degraded · " + label, Severity: SeverityError}
}

func AllocatorBadge(a *models.AllocatorStatus) Badge {
	if a == nil {
		return NeutralBadge
	}
	if a.Allowed {
		return Badge{Label: "Allocator OK", Severity: SeverityOK}
	}
	reason := a.Reason
	if reason == "" {
		reason = "blocked"
	}
	return Badge{Label: "Allocator: " + reason, Severity: SeverityWarn}
}
