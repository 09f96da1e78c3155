package game

// AssetBalance tracks the three resource pools a character controls.
// TechnicalCapability is an abstract 0..100 score, Capital is in whole
// currency units, Human is headcount (fractional transfers allowed).
type AssetBalance struct {
	TechnicalCapability float64 `json:"technical_capability" yaml:"technical_capability"`
	Capital             int64   `json:"capital" yaml:"capital"`
	Human               float64 `json:"human" yaml:"human"`
}

func (b AssetBalance) Add(o AssetBalance) AssetBalance {
	return AssetBalance{
		TechnicalCapability: b.TechnicalCapability + o.TechnicalCapability,
		Capital:             b.Capital + o.Capital,
		Human:               b.Human + o.Human,
	}
}

func (b AssetBalance) Sub(o AssetBalance) AssetBalance {
	return AssetBalance{
		TechnicalCapability: b.TechnicalCapability - o.TechnicalCapability,
		Capital:             b.Capital - o.Capital,
		Human:               b.Human - o.Human,
	}
}

func (b AssetBalance) Scale(f float64) AssetBalance {
	return AssetBalance{
		TechnicalCapability: b.TechnicalCapability * f,
		Capital:             int64(float64(b.Capital) * f),
		Human:               b.Human * f,
	}
}

// Negative reports whether any pool is below zero.
func (b AssetBalance) Negative() bool {
	return b.TechnicalCapability < 0 || b.Capital < 0 || b.Human < 0
}

// Covers reports whether b can pay for o in every pool.
func (b AssetBalance) Covers(o AssetBalance) bool {
	return !b.Sub(o).Negative()
}

const MaxTechnicalCapability = 100.0

// ClampTech keeps TechnicalCapability inside its 0..100 scale.
// Capital and Human are never clamped: going negative there is a
// consistency violation, not a saturation.
func (b AssetBalance) ClampTech() AssetBalance {
	if b.TechnicalCapability > MaxTechnicalCapability {
		b.TechnicalCapability = MaxTechnicalCapability
	}
	if b.TechnicalCapability < 0 {
		b.TechnicalCapability = 0
	}
	return b
}
