// Package form holds the answers collected for a single transport request
// and renders them into the final request text.
package form

import (
	"strconv"

	"github.com/agrohub/transportbot/bot/catalog"
)

// Form is the mutable answer record for one request in progress.
// Empty string means the question has not been answered yet.
type Form struct {
	Department string
	ThreadID   int

	VehicleType   string
	Initiator     string
	Company       string
	CargoType     string
	SizeType      string
	Volume        string
	Notes         string
	DatePeriod    string
	LoadCity      string
	LoadPlace     string
	LoadMethod    string
	LoadContact   string
	UnloadCity    string
	UnloadPlace   string
	UnloadMethod  string
	UnloadContact string
}

// New returns an empty form.
func New() *Form {
	return &Form{}
}

// Value returns the stored answer for a catalog key. Implements
// catalog.Answers.
func (f *Form) Value(key catalog.Key) string {
	switch key {
	case catalog.KeyVehicleType:
		return f.VehicleType
	case catalog.KeyInitiator:
		return f.Initiator
	case catalog.KeyCompany:
		return f.Company
	case catalog.KeyCargoType:
		return f.CargoType
	case catalog.KeySizeType:
		return f.SizeType
	case catalog.KeyVolume:
		return f.Volume
	case catalog.KeyNotes:
		return f.Notes
	case catalog.KeyDatePeriod:
		return f.DatePeriod
	case catalog.KeyLoadCity:
		return f.LoadCity
	case catalog.KeyLoadPlace:
		return f.LoadPlace
	case catalog.KeyLoadMethod:
		return f.LoadMethod
	case catalog.KeyLoadContact:
		return f.LoadContact
	case catalog.KeyUnloadCity:
		return f.UnloadCity
	case catalog.KeyUnloadPlace:
		return f.UnloadPlace
	case catalog.KeyUnloadMethod:
		return f.UnloadMethod
	case catalog.KeyUnloadContact:
		return f.UnloadContact
	}
	return ""
}

// Set stores an answer for a catalog key. Unknown keys are ignored.
func (f *Form) Set(key catalog.Key, value string) {
	switch key {
	case catalog.KeyVehicleType:
		f.VehicleType = value
	case catalog.KeyInitiator:
		f.Initiator = value
	case catalog.KeyCompany:
		f.Company = value
	case catalog.KeyCargoType:
		f.CargoType = value
	case catalog.KeySizeType:
		f.SizeType = value
	case catalog.KeyVolume:
		f.Volume = value
	case catalog.KeyNotes:
		f.Notes = value
	case catalog.KeyDatePeriod:
		f.DatePeriod = value
	case catalog.KeyLoadCity:
		f.LoadCity = value
	case catalog.KeyLoadPlace:
		f.LoadPlace = value
	case catalog.KeyLoadMethod:
		f.LoadMethod = value
	case catalog.KeyLoadContact:
		f.LoadContact = value
	case catalog.KeyUnloadCity:
		f.UnloadCity = value
	case catalog.KeyUnloadPlace:
		f.UnloadPlace = value
	case catalog.KeyUnloadMethod:
		f.UnloadMethod = value
	case catalog.KeyUnloadContact:
		f.UnloadContact = value
	}
}

// Routed reports whether the form already carries a department with its
// delivery thread. Template snapshots that include both skip the department
// question on load.
func (f *Form) Routed() bool {
	return f.Department != "" && f.ThreadID != 0
}

// Snapshot is the flat serialized view of a form, stored as template data.
type Snapshot map[string]string

const (
	snapDepartment = "department"
	snapThreadID   = "thread_id"
)

// Snapshot captures every answered question plus the department routing.
// Unanswered questions are omitted so loading the snapshot leaves them empty.
func (f *Form) Snapshot() Snapshot {
	s := Snapshot{}
	for _, q := range catalog.Questions() {
		if v := f.Value(q.Key); v != "" {
			s[string(q.Key)] = v
		}
	}
	if f.Department != "" {
		s[snapDepartment] = f.Department
	}
	if f.ThreadID != 0 {
		s[snapThreadID] = strconv.Itoa(f.ThreadID)
	}
	return s
}

// FromSnapshot rebuilds a form from stored template data. Unknown keys are
// ignored so old snapshots keep loading after catalog changes.
func FromSnapshot(s Snapshot) *Form {
	f := New()
	for _, q := range catalog.Questions() {
		if v, ok := s[string(q.Key)]; ok {
			f.Set(q.Key, v)
		}
	}
	f.Department = s[snapDepartment]
	if raw, ok := s[snapThreadID]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			f.ThreadID = n
		}
	}
	return f
}
