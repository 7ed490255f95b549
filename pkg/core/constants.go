package core

// Numerical tuning knobs shared by the intersection code and the tracer.
const (
	// Epsilon is the intersection tolerance: near-parallel ray/triangle
	// determinants and ray parameters below it count as misses.
	Epsilon = 1e-9

	// Bias offsets secondary ray origins along the surface normal and
	// shortens shadow tests, so rays do not re-hit the surface they left.
	Bias = 1e-3

	// Gamma is the display gamma applied after tone mapping.
	Gamma = 2.2
)
