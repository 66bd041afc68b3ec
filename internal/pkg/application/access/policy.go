package access

import (
	"context"
	"strings"
)

// DefaultUserSensors are the fuse ids the current user owns until they can
// be looked up from an authenticated session.
var DefaultUserSensors = []string{"145799809528704", "39620398887400"}

// Policy decides which sensors a caller may read.
type Policy interface {
	AccessibleSensors(ctx context.Context) []string
	CanAccess(ctx context.Context, fuseID string) bool
}

// StaticAllowlist grants every caller access to the same fixed set of fuse ids.
type StaticAllowlist struct {
	fuseIDs []string
	allowed map[string]struct{}
}

func NewStaticAllowlist(fuseIDs ...string) *StaticAllowlist {
	a := &StaticAllowlist{
		fuseIDs: make([]string, 0, len(fuseIDs)),
		allowed: make(map[string]struct{}, len(fuseIDs)),
	}

	for _, id := range fuseIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := a.allowed[id]; ok {
			continue
		}
		a.allowed[id] = struct{}{}
		a.fuseIDs = append(a.fuseIDs, id)
	}

	return a
}

// ParseStaticAllowlist builds an allowlist from a comma separated list of fuse ids.
func ParseStaticAllowlist(fuseIDs string) *StaticAllowlist {
	return NewStaticAllowlist(strings.Split(fuseIDs, ",")...)
}

func (a *StaticAllowlist) AccessibleSensors(ctx context.Context) []string {
	ids := make([]string, len(a.fuseIDs))
	copy(ids, a.fuseIDs)
	return ids
}

func (a *StaticAllowlist) CanAccess(ctx context.Context, fuseID string) bool {
	_, ok := a.allowed[fuseID]
	return ok
}
