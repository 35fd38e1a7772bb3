package listingquery

import (
	"github.com/x-xyz/nftmarket/domain/listing"
)

// Paginate returns the 1-based page of a derived view. Out of range pages
// are empty, page and pageSize are normalised instead of rejected.
func Paginate(view []listing.Listing, page, pageSize int) listing.Page {
	if pageSize < 1 {
		pageSize = listing.DefaultPageSize
	}
	if pageSize > listing.MaxPageSize {
		pageSize = listing.MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(view)
	res := listing.Page{
		Items:      []listing.Listing{},
		Total:      total,
		PageNum:    page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	// compare pages before multiplying, huge page numbers overflow
	if page > res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	res.Items = append(res.Items, view[start:end]...)
	return res
}
