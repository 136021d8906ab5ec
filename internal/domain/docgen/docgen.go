// Package docgen describes the legal document templates the generator service fills in
// and turns a flat set of key=value answers into the JSON body each template expects.
//
// Field paths are dotted. A "[]" segment marks a repeated group whose entries are
// addressed by index, e.g. "executors.0.name".
package docgen

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownKind signals a template name that is not in the catalog.
	ErrUnknownKind = errors.New("unknown document kind")
	// ErrMissingField signals a required answer that is absent or blank.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownField signals an answer the template has no place for.
	ErrUnknownField = errors.New("unknown field")
)

// Kind names a document template.
type Kind string

// Document kinds.
const (
	NDA             Kind = "nda"
	EmployeeNDA     Kind = "employee-nda"
	FlatSaleDeed    Kind = "flat-sale-deed"
	LandSaleDeed    Kind = "land-sale-deed"
	WillDeed        Kind = "will-deed"
	AgreementOfSale Kind = "agreement-of-sale"
	LeaveAndLicense Kind = "leave-and-license"
	PowerOfAttorney Kind = "power-of-attorney"
)

// Template is one generator endpoint and the answers it needs.
type Template struct {
	Kind     Kind
	Title    string
	Endpoint string
	Fields   []string
	// Defaults fill optional fields the user may still override.
	Defaults map[string]string
}

var catalog = map[Kind]Template{
	NDA: {
		Kind:     NDA,
		Title:    "Non-disclosure agreement",
		Endpoint: "/generate-general-nda-pdf",
		Fields: []string{
			"effective_date", "party1_name", "party2_name", "party1_business", "party2_business",
			"purpose", "confidentiality_period", "jurisdiction",
		},
	},
	EmployeeNDA: {
		Kind:     EmployeeNDA,
		Title:    "Employee non-disclosure and non-compete agreement",
		Endpoint: "/generate_employee_nda_pdf",
		Fields:   []string{"company_name", "company_address", "employee_name", "employee_address", "high_court_city"},
	},
	// Posted to the will deed route like the hosted wizard does. Override per deployment.
	FlatSaleDeed: {
		Kind:     FlatSaleDeed,
		Title:    "Deed of sale for a flat",
		Endpoint: "/generate_will_deed_pdf",
		Fields: []string{
			"owner_name", "owner_address", "owner_age",
			"witness_1_name", "witness_1_address", "witness_2_name", "witness_2_address",
			"property_type", "property_address", "property_size", "sale_price", "payment_method", "sale_date",
		},
	},
	LandSaleDeed: {
		Kind:     LandSaleDeed,
		Title:    "Deed of sale for land",
		Endpoint: "/generate_land_sale_deed_pdf",
		Fields: []string{
			"seller_name", "seller_father_name", "seller_age", "seller_pan", "seller_address",
			"purchaser_name", "purchaser_father_name", "purchaser_age", "purchaser_pan", "purchaser_address",
			"land_details.size", "land_details.location",
			"land_details.boundaries.north", "land_details.boundaries.south",
			"land_details.boundaries.east", "land_details.boundaries.west",
			"total_consideration", "cheque_details", "witness_1", "witness_2",
		},
	},
	WillDeed: {
		Kind:     WillDeed,
		Title:    "Will deed",
		Endpoint: "/generate_will_deed_pdf",
		Fields: []string{
			"file_name",
			"testator_name", "father_name", "testator_address", "testator_age", "religion", "occupation",
			"wife_name", "children_details", "family_members", "property_details",
			"executors.[].name", "executors.[].father_name", "executors.[].address",
			"executors.[].age", "executors.[].religion", "executors.[].occupation",
			"witness_1_name", "witness_1_address", "witness_2_name", "witness_2_address",
			"day_of_contract", "month_of_contract", "year_of_contract",
		},
		Defaults: map[string]string{"file_name": "will_deed.pdf"},
	},
	AgreementOfSale: {
		Kind:     AgreementOfSale,
		Title:    "Agreement of sale",
		Endpoint: "/generate_agreement_of_sale_pdf",
		Fields: []string{
			"seller_name", "seller_father_name", "seller_age", "seller_address", "seller_wife", "seller_sons_daughters",
			"purchaser_name", "purchaser_father_name", "purchaser_age", "purchaser_address",
			"schedule_property", "sale_amount", "advance_amount", "cheque_no", "bank_name", "cheque_date",
			"balance_amount", "transaction_end_date", "purpose_of_sale",
			"previous_owner", "previous_sale_deed_date", "previous_sale_doct_no", "previous_sale_book1_volumne_no",
			"previous_sale_page_no_start", "prev_sale_page_no_end",
			"witness_1", "witness_2",
		},
	},
	LeaveAndLicense: {
		Kind:     LeaveAndLicense,
		Title:    "Leave and license agreement",
		Endpoint: "/generate-lnl-pdf",
		Fields: []string{
			"date", "city",
			"stamp_duty", "stamp_duty_grn", "stamp_duty_date", "registration_fee", "registration_grn", "registration_date",
			"licensor_name", "licensor_age", "licensor_occupation", "licensor_pan", "licensor_uid", "licensor_address",
			"licensee_name", "licensee_age", "licensee_occupation", "licensee_pan", "licensee_uid", "licensee_address",
			"period", "start_date", "end_date", "monthly_rent", "deposit", "deposit_payment_method",
			"maintenance_charges_paid_by", "purpose",
			"flat_number", "built_up_area", "floor", "building_name", "plot_details",
			"village", "tehsil", "district", "municipal_corporation",
		},
	},
	PowerOfAttorney: {
		Kind:     PowerOfAttorney,
		Title:    "Power of attorney",
		Endpoint: "/generate-pow-pdf",
		Fields: []string{
			"principal_name", "principal_age", "principal_address",
			"attorney_name", "attorney_age", "attorney_address",
			"powers_granted", "duration", "witness_1_name", "witness_2_name",
		},
	},
}

// Kinds lists every template name in stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(catalog))
	for k := range catalog {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Lookup returns the template for a kind name, case-insensitively.
func Lookup(name string) (Template, error) {
	t, ok := catalog[Kind(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Template{}, fmt.Errorf("%q: %w", name, ErrUnknownKind)
	}
	return t, nil
}

// FileName is the name a generated document is saved under.
func (t Template) FileName() string {
	return string(t.Kind) + ".pdf"
}

// Form is a validated request body ready to post to the template endpoint.
type Form struct {
	Template Template
	Body     map[string]any
}

// FileName prefers an explicit file_name answer over the template default.
// Directory parts of the answer are dropped.
func (f Form) FileName() string {
	if name, ok := f.Body["file_name"].(string); ok {
		name = filepath.Base(filepath.Clean("/" + name))
		if len(name) > len(".pdf") && strings.HasSuffix(strings.ToLower(name), ".pdf") {
			return name
		}
	}
	return f.Template.FileName()
}

// FieldError lists every problem found in one pass over the answers.
type FieldError struct {
	Missing []string
	Unknown []string
}

func (e *FieldError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ", "))
	}
	return "document fields: " + strings.Join(parts, "; ")
}

// Unwrap exposes ErrMissingField and ErrUnknownField to errors.Is.
func (e *FieldError) Unwrap() []error {
	var errs []error
	if len(e.Missing) > 0 {
		errs = append(errs, ErrMissingField)
	}
	if len(e.Unknown) > 0 {
		errs = append(errs, ErrUnknownField)
	}
	return errs
}

// Build validates answers against the template and nests them into the request body.
// Every field must be non-blank after trimming. A repeated group needs at least one
// entry, indexed from 0 without gaps, and every entry must be complete.
func (t Template) Build(answers map[string]string) (Form, error) {
	values := make(map[string]string, len(answers)+len(t.Defaults))
	for k, v := range t.Defaults {
		values[k] = v
	}
	for k, v := range answers {
		values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	fields := make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		fields[f] = struct{}{}
	}

	ferr := &FieldError{}
	groups := make(map[string]map[int]struct{}) // group prefix -> indices seen
	for key := range values {
		pattern, group, idx := generalize(key)
		if _, ok := fields[pattern]; !ok {
			ferr.Unknown = append(ferr.Unknown, key)
			continue
		}
		if group != "" {
			if groups[group] == nil {
				groups[group] = make(map[int]struct{})
			}
			groups[group][idx] = struct{}{}
		}
	}

	// Entries past a gap cannot be placed in the list.
	for key := range values {
		if _, group, idx := generalize(key); group != "" && idx >= groupLen(groups[group]) {
			if _, ok := fields[generalized(key)]; ok {
				ferr.Unknown = append(ferr.Unknown, key)
			}
		}
	}

	for _, f := range t.Fields {
		group, sub, repeated := strings.Cut(f, ".[].")
		if !repeated {
			if values[f] == "" {
				ferr.Missing = append(ferr.Missing, f)
			}
			continue
		}
		n := groupLen(groups[group])
		if n == 0 {
			ferr.Missing = append(ferr.Missing, group+".0."+sub)
			continue
		}
		for i := range n {
			key := group + "." + strconv.Itoa(i) + "." + sub
			if values[key] == "" {
				ferr.Missing = append(ferr.Missing, key)
			}
		}
	}

	if len(ferr.Missing) > 0 || len(ferr.Unknown) > 0 {
		sort.Strings(ferr.Missing)
		sort.Strings(ferr.Unknown)
		return Form{}, ferr
	}
	return Form{Template: t, Body: nest(values)}, nil
}

// generalize maps "executors.2.name" to "executors.[].name" and reports the group and index.
func generalize(key string) (pattern, group string, idx int) {
	segs := strings.Split(key, ".")
	for i, s := range segs {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || i == 0 {
			continue
		}
		group = strings.Join(segs[:i], ".")
		idx = n
		segs[i] = "[]"
		return strings.Join(segs, "."), group, idx
	}
	return key, "", 0
}

func generalized(key string) string {
	p, _, _ := generalize(key)
	return p
}

// groupLen is the entry count when indices run 0..n-1, or the first gap otherwise.
func groupLen(seen map[int]struct{}) int {
	n := 0
	for {
		if _, ok := seen[n]; !ok {
			return n
		}
		n++
	}
}

func nest(values map[string]string) map[string]any {
	root := make(map[string]any)
	lists := make(map[string]map[int]map[string]any)

	for key, v := range values {
		pattern, group, idx := generalize(key)
		if group == "" {
			setPath(root, strings.Split(key, "."), v)
			continue
		}
		if lists[group] == nil {
			lists[group] = make(map[int]map[string]any)
		}
		if lists[group][idx] == nil {
			lists[group][idx] = make(map[string]any)
		}
		_, rest, _ := strings.Cut(pattern, ".[].")
		setPath(lists[group][idx], strings.Split(rest, "."), v)
	}

	for group, entries := range lists {
		items := make([]any, len(entries))
		for i := range items {
			items[i] = entries[i]
		}
		setPath(root, strings.Split(group, "."), items)
	}
	return root
}

func setPath(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
