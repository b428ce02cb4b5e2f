package payroll

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"
)

// PreviewToken digests a computed payroll so a later commit can prove it saw the same numbers.
// Results are hashed in instructor order; item order within a result is preserved.
func PreviewToken(p Period, results []Result) string {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].InstructorID < sorted[j].InstructorID })

	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s|%s\n", p.Start.UTC().Format(time.RFC3339), p.End.UTC().Format(time.RFC3339))
	for _, r := range sorted {
		fmt.Fprintf(h, "%s|%d\n", r.InstructorID, r.Amount)
		for _, it := range r.Items {
			fmt.Fprintf(h, "%s|%s|%d\n", it.Type, it.ReferenceID, it.Amount)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
