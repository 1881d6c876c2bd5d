package analytics

// DayProgress is a single day's intake measured against the target and TDEE.
type DayProgress struct {
	Consumed    int     `json:"consumed"`
	Target      int     `json:"target"`
	TDEE        int     `json:"tdee"`
	Remaining   int     `json:"remaining"`
	Percent     float64 `json:"percent"`
	PercentBar  float64 `json:"percentBar"`
	DeltaVsTDEE int     `json:"deltaVsTdee"`
	OverTarget  bool    `json:"overTarget"`
}

func Progress(consumed, target, tdee int) DayProgress {
	p := DayProgress{
		Consumed:    consumed,
		Target:      target,
		TDEE:        tdee,
		Remaining:   target - consumed,
		DeltaVsTDEE: consumed - tdee,
		OverTarget:  target > 0 && consumed > target,
	}
	if target > 0 {
		p.Percent = float64(consumed) / float64(target) * 100
		p.PercentBar = clamp(p.Percent, 0, 100)
	}
	return p
}
