package repository

import "gorm.io/gorm"

// Listing endpoints page differently: the public feeds default to 20
// rows, admin user management to 50, and the audit trail to 100 with a
// higher ceiling for export-style reads.
const (
	defaultPageSize = 20
	maxPageSize     = 100

	userPageSize = 50

	auditPageSize    = 100
	maxAuditPageSize = 500
)

func clampPage(page, limit, fallback, ceiling int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = fallback
	}
	if limit > ceiling {
		limit = ceiling
	}
	return page, limit
}

// paginate applies offset/limit from 1-based page numbers, clamping the
// page size so a single request cannot drag the whole table.
func paginate(query *gorm.DB, page, limit int) *gorm.DB {
	return paginateWithin(query, page, limit, defaultPageSize, maxPageSize)
}

func paginateWithin(query *gorm.DB, page, limit, fallback, ceiling int) *gorm.DB {
	page, limit = clampPage(page, limit, fallback, ceiling)
	return query.Offset((page - 1) * limit).Limit(limit)
}

// NormalizePage returns the effective page/limit pair paginate will use,
// for echoing back in paginated envelopes.
func NormalizePage(page, limit int) (int, int) {
	return clampPage(page, limit, defaultPageSize, maxPageSize)
}

// NormalizeUserPage mirrors the admin user listing's 50-row default.
func NormalizeUserPage(page, limit int) (int, int) {
	return clampPage(page, limit, userPageSize, maxPageSize)
}

// NormalizeAuditPage mirrors the audit trail's 100-row default and
// 500-row ceiling.
func NormalizeAuditPage(page, limit int) (int, int) {
	return clampPage(page, limit, auditPageSize, maxAuditPageSize)
}
