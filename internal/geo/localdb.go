package geo

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"os"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/pkg/logger"
)

// LocalDBProvider is the offline, lowest-precision stage: an IP range
// table loaded from a JSON file at startup. No network dependency, no
// coordinates, country/region/city only.
type LocalDBProvider struct {
	entries []localEntry
}

type localEntry struct {
	start   uint32
	end     uint32
	country string
	region  string
	city    string
}

// localDBRow is one row of the on-disk JSON array.
type localDBRow struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

// NewLocalDBProvider loads the range database from path. A missing or
// unreadable file yields an empty provider (every lookup misses) rather
// than a startup failure; rows that fail to parse are skipped.
func NewLocalDBProvider(path string, log *logger.Logger) *LocalDBProvider {
	if log == nil {
		log = logger.Default()
	}
	p := &LocalDBProvider{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("geo local db unreadable, starting empty", "path", path, "error", err.Error())
		}
		return p
	}

	var rows []localDBRow
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Warn("geo local db corrupt, starting empty", "path", path, "error", err.Error())
		return p
	}

	for _, row := range rows {
		start, ok1 := ipv4Numeric(row.Start)
		end, ok2 := ipv4Numeric(row.End)
		if !ok1 || !ok2 || start > end {
			continue
		}
		p.entries = append(p.entries, localEntry{
			start:   start,
			end:     end,
			country: row.Country,
			region:  row.Region,
			city:    row.City,
		})
	}
	log.Info("geo local db loaded", "path", path, "ranges", len(p.entries))
	return p
}

// Name implements Provider.
func (p *LocalDBProvider) Name() string { return "local-db" }

// Lookup implements Provider.
func (p *LocalDBProvider) Lookup(_ context.Context, ip string) (domain.Location, bool) {
	n, ok := ipv4Numeric(ip)
	if !ok {
		return domain.Location{}, false
	}
	for _, e := range p.entries {
		if n >= e.start && n <= e.end {
			return domain.Location{Country: e.country, Region: e.region, City: e.city}, true
		}
	}
	return domain.Location{}, false
}

func ipv4Numeric(s string) (uint32, bool) {
	parsed := net.ParseIP(s)
	if parsed == nil {
		return 0, false
	}
	v4 := parsed.To4()
	if v4 == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(v4), true
}
