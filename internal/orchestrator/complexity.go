package orchestrator

import "bytes"

// complexity computes the indentation-based average-depth * max-depth score
// (spec supplement C.1, ported from original_source's
// roam/index/indexer.py:_compute_complexity). Tabs expand to 4 columns
// before measuring indent, matching the Python's str.expandtabs(4).
func complexity(source []byte) float64 {
	lines := bytes.Split(source, []byte("\n"))
	var depths []float64
	for _, line := range lines {
		expanded := expandTabs(line, 4)
		stripped := bytes.TrimLeft(expanded, " ")
		if len(stripped) == 0 {
			continue
		}
		indent := len(expanded) - len(stripped)
		depths = append(depths, float64(indent)/4.0)
	}
	if len(depths) == 0 {
		return 0
	}
	var sum, max float64
	for _, d := range depths {
		sum += d
		if d > max {
			max = d
		}
	}
	avg := sum / float64(len(depths))
	return round2(avg * max)
}

func expandTabs(line []byte, width int) []byte {
	out := make([]byte, 0, len(line))
	col := 0
	for _, b := range line {
		if b == '\t' {
			pad := width - (col % width)
			for i := 0; i < pad; i++ {
				out = append(out, ' ')
				col++
			}
			continue
		}
		out = append(out, b)
		col++
	}
	return out
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func countLines(source []byte) int {
	n := bytes.Count(source, []byte("\n"))
	if len(source) > 0 && source[len(source)-1] != '\n' {
		n++
	}
	return n
}
