package models

// DefaultPageSize is the number of records requested per catalog page.
const DefaultPageSize = 12

// CatalogPage is one server-side page of the filtered collection. It is always
// replaced as a whole.
type CatalogPage struct {
	Items       []FileRecord
	CurrentPage int
	TotalPages  int
	TotalCount  int
}

// Clone returns a copy whose Items slice does not alias p.Items.
func (p CatalogPage) Clone() CatalogPage {
	c := p
	c.Items = append([]FileRecord(nil), p.Items...)
	return c
}

// IndexOf returns the position of the record with the given id, or -1.
func (p CatalogPage) IndexOf(id string) int {
	for i, it := range p.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// QuotaState is the storage usage reported by the backend. The client only
// displays it.
type QuotaState struct {
	UsedBytes  int64
	LimitBytes int64
}

// Remaining returns the unused part of the quota, never negative.
func (q QuotaState) Remaining() int64 {
	if q.UsedBytes >= q.LimitBytes {
		return 0
	}
	return q.LimitBytes - q.UsedBytes
}

// Percent returns the used share of the quota in percent, 0 when no limit is known.
func (q QuotaState) Percent() float64 {
	if q.LimitBytes <= 0 {
		return 0
	}
	return float64(q.UsedBytes) / float64(q.LimitBytes) * 100
}

// MB converts a byte count to mebibytes for the profile screen.
func MB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
