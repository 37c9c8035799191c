package metrics

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
)

// energyPattern matches integers immediately followed by '+', the marker the
// benchmark harness uses for energy readings.
var energyPattern = regexp.MustCompile(`(\d+)\+`)

// EnergySummary is the sum and count of the energy readings in one log. The
// sum is exact; readings can exceed the range of a float64 mantissa.
type EnergySummary struct {
	Sum   big.Int
	Count int
}

// Average returns the mean reading, and false when there were no readings.
func (s *EnergySummary) Average() (float64, bool) {
	if s.Count == 0 {
		return 0, false
	}
	avg, _ := new(big.Rat).SetFrac(&s.Sum, big.NewInt(int64(s.Count))).Float64()
	return avg, true
}

// ScanEnergy reads a benchmark log. Lines are trimmed, lines starting with '#'
// are skipped, and a reading of exactly "0" is ignored.
func ScanEnergy(r io.Reader) (*EnergySummary, error) {
	s := &EnergySummary{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, m := range energyPattern.FindAllStringSubmatch(line, -1) {
			if m[1] == "0" {
				continue
			}
			var v big.Int
			if _, ok := v.SetString(m[1], 10); !ok {
				continue
			}
			s.Sum.Add(&s.Sum, &v)
			s.Count++
		}
	}
	return s, scanner.Err()
}

// ExtractEnergy summarizes every regular file in dir, in name order. Files
// without any reading produce no record. The short identifier is the first
// eight characters of the file name.
func ExtractEnergy(dir string, years *YearIndex) ([]schema.EnergyRecord, error) {
	names, err := listFiles(dir, func(string) bool { return true })
	if err != nil {
		return nil, err
	}

	var records []schema.EnergyRecord
	for _, name := range names {
		summary, err := scanEnergyFile(filepath.Join(dir, name))
		if err != nil {
			contract.LogWarn("Error processing file "+name, err)
			continue
		}
		avg, ok := summary.Average()
		if !ok {
			continue
		}
		short := schema.ShortID(name)
		records = append(records, schema.EnergyRecord{
			ShortID: short,
			Average: avg,
			Count:   summary.Count,
			Year:    years.Year(short),
		})
	}
	return records, nil
}

func scanEnergyFile(path string) (*EnergySummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ScanEnergy(f)
}

// listFiles returns the sorted names of regular files in dir accepted by keep.
func listFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", contract.ErrMissingInput, dir)
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !keep(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}
