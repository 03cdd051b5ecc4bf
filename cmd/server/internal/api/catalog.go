package api

import (
	"github.com/gin-gonic/gin"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
)

// CatalogEntry 任务目录条目
type CatalogEntry struct {
	Category        string `json:"category"`
	SubType         string `json:"subType,omitempty"`
	Quota           int    `json:"quota"`
	PointValue      int    `json:"pointValue"`
	RequiresLink    bool   `json:"requiresLink"`
	EvidenceMin     int    `json:"evidenceMin"`
	EvidenceMax     int    `json:"evidenceMax"`
	RequiresMetrics bool   `json:"requiresMetrics"`
	Enabled         bool   `json:"enabled"`
	Topic           string `json:"topic,omitempty"`
}

// HandleGetCatalog GET /api/v1/catalog
// 按固定顺序返回全部任务类别定义
func HandleGetCatalog(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		specs := cat.All()
		entries := make([]CatalogEntry, 0, len(catalog.Keys()))
		for _, key := range catalog.Keys() {
			spec, ok := specs[key.String()]
			if !ok {
				continue
			}
			entries = append(entries, CatalogEntry{
				Category:        string(key.Category),
				SubType:         string(key.SubType),
				Quota:           spec.Quota,
				PointValue:      spec.PointValue,
				RequiresLink:    spec.RequiresLink,
				EvidenceMin:     spec.EvidenceMin,
				EvidenceMax:     spec.EvidenceMax,
				RequiresMetrics: spec.RequiresMetrics,
				Enabled:         spec.Enabled,
				Topic:           spec.Topic,
			})
		}
		successResponse(c, gin.H{
			"entries":        entries,
			"communityQuota": cat.CommunityQuota(),
		})
	}
}
