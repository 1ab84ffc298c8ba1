// Package rbac holds the static route-group permission table. The table is
// built once at startup and never mutated; every protected route group gets
// one entry and no per-endpoint granularity below that.
package rbac

import "whatnow/cms-api/internal/model"

// Group names one bundle of endpoints sharing a permission entry.
type Group string

const (
	GroupAuditLog       Group = "audit_log"
	GroupAPIUsage       Group = "api_usage"
	GroupAPIUsers       Group = "api_users"
	GroupBulkUpload     Group = "bulk_upload"
	GroupContent        Group = "content"
	GroupContentMessage Group = "content_message"
	GroupLanguage       Group = "language"
	GroupMessages       Group = "messages"
	GroupProfile        Group = "profile"
	GroupPublish        Group = "publish"
	GroupRegion         Group = "region"
	GroupSociety        Group = "society"
	GroupSuperAdmin     Group = "super_admin"
	GroupTerm           Group = "term"
	GroupUsers          Group = "users"
)

type Table struct {
	entries map[Group]map[int]struct{}
}

// Default returns the permission table the service ships with.
func Default() *Table {
	return build(map[Group][]int{
		GroupAuditLog:       {model.RoleNSAdmin, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupAPIUsage:       {model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupAPIUsers:       {model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupBulkUpload:     {model.RoleNSAdmin, model.RoleNSEditor, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupContent:        {model.RoleNSAdmin, model.RoleNSEditor, model.RoleSuperAdmin, model.RoleGDPCAdmin, model.RoleReviewer},
		GroupContentMessage: {model.RoleNSAdmin, model.RoleNSEditor, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupLanguage:       {model.RoleNSAdmin, model.RoleNSEditor, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupMessages:       {model.RoleNSAdmin, model.RoleNSEditor, model.RoleSuperAdmin, model.RoleGDPCAdmin, model.RoleReviewer},
		GroupProfile:        {model.RoleNSAdmin, model.RoleNSEditor, model.RoleAPIUser, model.RoleSuperAdmin, model.RoleGDPCAdmin, model.RoleReviewer},
		GroupPublish:        {model.RoleNSAdmin, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupRegion:         {model.RoleNSAdmin, model.RoleNSEditor, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupSociety:        {model.RoleNSAdmin, model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupSuperAdmin:     {model.RoleSuperAdmin},
		GroupTerm:           {model.RoleSuperAdmin, model.RoleGDPCAdmin},
		GroupUsers:          {model.RoleNSAdmin, model.RoleSuperAdmin, model.RoleGDPCAdmin},
	})
}

func build(src map[Group][]int) *Table {
	t := &Table{entries: make(map[Group]map[int]struct{}, len(src))}
	for group, roles := range src {
		set := make(map[int]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		t.entries[group] = set
	}
	return t
}

// Allowed reports whether roleID may call endpoints in group. Unknown
// groups allow nobody.
func (t *Table) Allowed(group Group, roleID int) bool {
	set, ok := t.entries[group]
	if !ok {
		return false
	}
	_, ok = set[roleID]
	return ok
}

// Groups lists every route group the table knows about.
func (t *Table) Groups() []Group {
	out := make([]Group, 0, len(t.entries))
	for g := range t.entries {
		out = append(out, g)
	}
	return out
}
