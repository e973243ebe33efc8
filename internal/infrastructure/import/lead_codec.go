package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lead CSV columns, in export order
const (
	ColFullName          = "full_name"
	ColEmail             = "email"
	ColPhone             = "phone"
	ColSource            = "source"
	ColStatus            = "status"
	ColBudgetMin         = "budget_min"
	ColBudgetMax         = "budget_max"
	ColPreferredDistrict = "preferred_district"
	ColNotes             = "notes"
)

// LeadHeader is the header written on export and expected on import
var LeadHeader = []string{
	ColFullName, ColEmail, ColPhone, ColSource, ColStatus,
	ColBudgetMin, ColBudgetMax, ColPreferredDistrict, ColNotes,
}

// LeadImport is the outcome of decoding a lead CSV
type LeadImport struct {
	Leads     []*crm.Lead
	TotalRows int
	Failed    int
	Errors    *ErrorCollection
}

// DecodeLeads parses a lead CSV into new leads of the given agency.
// File-level problems (encoding, header) return an error; row problems are
// collected in LeadImport.Errors and the row is skipped.
func DecodeLeads(r io.Reader, agencyID uuid.UUID, maxErrors int) (*LeadImport, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders([]string{ColFullName}); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	if !parser.HasHeader(ColEmail) && !parser.HasHeader(ColPhone) {
		return nil, &MissingColumnsError{Columns: []string{ColEmail + " or " + ColPhone}}
	}

	result := &LeadImport{Errors: NewErrorCollection(maxErrors)}
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			var rowErr RowError
			if !errors.As(err, &rowErr) {
				return nil, err
			}
			result.TotalRows++
			result.Failed++
			result.Errors.Add(rowErr)
			continue
		}
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++

		lead, ok := decodeLeadRow(row, agencyID, result.Errors)
		if !ok {
			result.Failed++
			continue
		}
		result.Leads = append(result.Leads, lead)
	}
	return result, nil
}

// decodeLeadRow validates every column so one pass reports all problems of a row
func decodeLeadRow(row *Row, agencyID uuid.UUID, errs *ErrorCollection) (*crm.Lead, bool) {
	line := row.LineNumber
	valid := true

	fullName := row.Get(ColFullName)
	if fullName == "" {
		errs.AddRequired(line, ColFullName)
		valid = false
	}

	email, phone := row.Get(ColEmail), row.Get(ColPhone)
	if email == "" && phone == "" {
		errs.Add(NewRowError(line, ColEmail, ErrCodeImportRequiredField, "either email or phone is required"))
		valid = false
	} else if email != "" {
		if err := (&crm.Lead{}).SetContact(email, ""); err != nil {
			errs.AddInvalid(line, ColEmail, ErrCodeImportInvalidFormat, "invalid email format", email)
			valid = false
		}
	}

	source := crm.LeadSourceOther
	if v := row.Get(ColSource); v != "" {
		parsed, err := crm.ParseLeadSource(v)
		if err != nil {
			errs.AddInvalid(line, ColSource, ErrCodeImportInvalidValue, fmt.Sprintf("unknown source, expected one of %v", crm.AllLeadSources), v)
			valid = false
		}
		source = parsed
	}

	status := crm.LeadStatusNew
	if v := row.Get(ColStatus); v != "" {
		parsed, err := crm.ParseLeadStatus(v)
		if err != nil {
			errs.AddInvalid(line, ColStatus, ErrCodeImportInvalidValue, fmt.Sprintf("unknown status, expected one of %v", crm.AllLeadStatuses), v)
			valid = false
		}
		status = parsed
	}

	budgetMin, okMin := parseBudget(row, ColBudgetMin, errs)
	budgetMax, okMax := parseBudget(row, ColBudgetMax, errs)
	if !okMin || !okMax {
		valid = false
	} else if budgetMin != nil && budgetMax != nil && budgetMin.GreaterThan(*budgetMax) {
		errs.AddInvalid(line, ColBudgetMin, ErrCodeImportInvalidRange, "budget_min cannot exceed budget_max", budgetMin.String())
		valid = false
	}

	if !valid {
		return nil, false
	}

	lead, err := crm.NewLead(agencyID, fullName, email, phone, source)
	if err != nil {
		errs.Add(NewRowError(line, "", ErrCodeImportInvalidValue, domainMessage(err)))
		return nil, false
	}
	if err := lead.SetBudget(budgetMin, budgetMax); err != nil {
		errs.Add(NewRowError(line, ColBudgetMin, ErrCodeImportInvalidRange, domainMessage(err)))
		return nil, false
	}
	lead.SetPreferences(row.Get(ColPreferredDistrict), row.Get(ColNotes))
	// Imported rows land directly in their recorded status; the reset rule only guards live transitions.
	lead.Status = status
	return lead, true
}

func parseBudget(row *Row, column string, errs *ErrorCollection) (*decimal.Decimal, bool) {
	v := row.Get(column)
	if v == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		errs.AddInvalid(row.LineNumber, column, ErrCodeImportInvalidFormat, "expected a decimal number", v)
		return nil, false
	}
	if d.IsNegative() {
		errs.AddInvalid(row.LineNumber, column, ErrCodeImportInvalidRange, "budget cannot be negative", v)
		return nil, false
	}
	return &d, true
}

func domainMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// EncodeLeads writes leads with LeadHeader so the output can be imported again
func EncodeLeads(w io.Writer, leads []crm.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LeadHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range leads {
		l := &leads[i]
		record := []string{
			l.FullName,
			l.Email,
			l.Phone,
			string(l.Source),
			string(l.Status),
			formatBudget(l.BudgetMin),
			formatBudget(l.BudgetMax),
			l.PreferredDistrict,
			l.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write lead %s: %w", l.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatBudget(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
