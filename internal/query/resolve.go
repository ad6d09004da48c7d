package query

import (
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/search"
)

// ResolveOptions adjust a request's filters for id resolution: bulk
// actions force their own id field, some require skip-traced documents,
// and pushing only new prospects excludes campaign members.
type ResolveOptions struct {
	IDField       string
	IDList        []int64
	ForceSkip     bool
	NotInCampaign bool
}

// ApplyResolveOptions returns a copy of the filters with the options
// folded in. The input is never modified; a nil input grows into a fresh
// filter set when any option needs one.
func ApplyResolveOptions(f *search.Filters, opts ResolveOptions) (*search.Filters, error) {
	out := f.Clone()
	if out == nil {
		if !opts.ForceSkip && len(opts.IDList) == 0 && !opts.NotInCampaign {
			return nil, nil
		}
		out = &search.Filters{}
	}

	if opts.ForceSkip {
		v := true
		out.SkipTraced = &v
	}
	if len(opts.IDList) > 0 {
		ids := append([]int64(nil), opts.IDList...)
		switch opts.IDField {
		case "property_id":
			out.PropertyID = ids
		case "prospect_id":
			out.ProspectID = ids
		case "address_id":
			out.AddressID = ids
		default:
			return nil, fmt.Errorf("unknown id field %q", opts.IDField)
		}
	}
	if opts.NotInCampaign {
		v := false
		out.InCampaign = &v
	}
	return out, nil
}
