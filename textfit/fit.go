// Package textfit shrinks and truncates single-line text so that it fits a
// maximum width.
//
// Fitting first walks a ladder of font sizes from the starting size down to
// the minimum in 0.5pt steps and keeps the largest size at which the whole
// text fits. When even the minimum size is too wide, the text is cut to the
// longest prefix that still fits with an ellipsis appended.
package textfit

import (
	"math"
	"strings"
	"unicode"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// Step is the distance between two sizes on the shrink ladder.
const Step = 0.5

// Result is the outcome of fitting one string.
type Result struct {
	Text      string
	Size      float64
	Shrunk    bool // Size is below the starting size
	Truncated bool // Text was cut and ends with Ellipsis
}

// Fit returns the text to draw and the size to draw it at so that its width
// measured by m does not exceed maxWidth. A maxWidth of zero or less means
// unconstrained, and empty text is returned as is.
func Fit(m Measurer, text string, size, maxWidth, minSize float64) (string, float64) {
	r := FitResult(m, text, size, maxWidth, minSize)
	return r.Text, r.Size
}

// FitResult is like Fit but also reports which adjustment was applied.
func FitResult(m Measurer, text string, size, maxWidth, minSize float64) Result {
	if text == "" || maxWidth <= 0 {
		return Result{Text: text, Size: size}
	}

	if s, ok := shrink(m, text, size, maxWidth, minSize); ok {
		return Result{Text: text, Size: s, Shrunk: s < size}
	}

	if m.Width(Ellipsis, minSize) > maxWidth {
		return Result{Text: Ellipsis, Size: minSize, Shrunk: minSize < size, Truncated: true}
	}
	return Result{
		Text:      truncate(m, text, maxWidth, minSize),
		Size:      minSize,
		Shrunk:    minSize < size,
		Truncated: true,
	}
}

// shrink finds the largest ladder size at which text fits. Sizes on the
// ladder are size, size-Step, ... down to the last one not below minSize.
// Width grows with size, so the fitting sizes form a suffix of the ladder
// and can be found by binary search.
func shrink(m Measurer, text string, size, maxWidth, minSize float64) (float64, bool) {
	if size < minSize {
		return 0, false
	}
	last := int(math.Floor((size-minSize)/Step + 1e-9))
	at := func(k int) float64 { return size - Step*float64(k) }
	fits := func(k int) bool { return m.Width(text, at(k)) <= maxWidth }

	if !fits(last) {
		return 0, false
	}
	lo, hi := 0, last
	for lo < hi {
		mid := (lo + hi) / 2
		if fits(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return at(lo), true
}

// truncate returns the longest prefix of text, trimmed of trailing
// whitespace, that fits with the ellipsis at size. The caller guarantees the
// ellipsis alone fits. Candidate width never decreases as the prefix grows,
// which makes the search a binary one.
func truncate(m Measurer, text string, maxWidth, size float64) string {
	runes := []rune(text)
	candidate := func(n int) string {
		return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + Ellipsis
	}
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.Width(candidate(mid), size) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return candidate(lo)
}
