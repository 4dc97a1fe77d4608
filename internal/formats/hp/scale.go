package hp

import "github.com/mind-engage/mocktest/internal/formats"

// Scale maps percentage correct to the 0.00–2.00 scale. The knots are an
// approximation of published normalization tables; the real tables vary per
// sitting.
var Scale = formats.Curve{
	{Pct: 0, Scaled: 0},
	{Pct: 20, Scaled: 0.10},
	{Pct: 35, Scaled: 0.40},
	{Pct: 50, Scaled: 0.80},
	{Pct: 65, Scaled: 1.20},
	{Pct: 80, Scaled: 1.60},
	{Pct: 90, Scaled: 1.85},
	{Pct: 100, Scaled: 2.00},
}
