package entity

// Column maps one submission key to its spreadsheet header. Headers are
// the canonical human-readable field identifiers, not programmatic keys.
type Column struct {
	Header   string
	Key      string
	Required bool
}

// CategorySchema describes one registration category: which sheet its
// rows land in and which columns (and required fields) it carries.
// All categories share a single intake algorithm parameterized by this
// value.
type CategorySchema struct {
	Category  string
	SheetName string

	// SheetNameKey, when set, names the submission field whose value
	// selects the target sheet (the string divisions file one sheet per
	// division). It is implicitly required.
	SheetNameKey string

	Columns []Column
}

// HeaderRow returns the full header schema for the category's sheet:
// the two control columns followed by the category columns.
func (s CategorySchema) HeaderRow() []string {
	headers := make([]string, 0, len(s.Columns)+2)
	headers = append(headers, ColumnTimestamp, ColumnPaymentStatus)
	for _, col := range s.Columns {
		headers = append(headers, col.Header)
	}
	return headers
}

// SoloPianoSchema is the piano division registration form.
func SoloPianoSchema() CategorySchema {
	return CategorySchema{
		Category:  "solo-piano",
		SheetName: SheetRegistrations,
		Columns: []Column{
			{Header: "Teacher First Name", Key: "teacherFirstName", Required: true},
			{Header: "Teacher Last Name", Key: "teacherLastName", Required: true},
			{Header: "Teacher Email", Key: "teacherEmail", Required: true},
			{Header: "Teacher Phone", Key: "teacherPhone", Required: true},
			{Header: "Student First Name", Key: "studentFirstName", Required: true},
			{Header: "Student Middle Name", Key: "studentMiddleName"},
			{Header: "Student Last Name", Key: "studentLastName", Required: true},
			{Header: "Student Email", Key: "studentEmail", Required: true},
			{Header: "Date of Birth", Key: "dateOfBirth", Required: true},
			{Header: "Student Age", Key: "studentAge", Required: true},
			{Header: "Proof of Age URL", Key: "proofOfAgeUrl"},
			{Header: "Street Address", Key: "streetAddress"},
			{Header: "Street Address 2", Key: "streetAddress2"},
			{Header: "City", Key: "city"},
			{Header: "State", Key: "state"},
			{Header: "Zip Code", Key: "zipCode"},
			{Header: "Division", Key: "division", Required: true},
			{Header: "Section", Key: "section", Required: true},
			{Header: "Repertoire 1 Title", Key: "repertoire1Title", Required: true},
			{Header: "Repertoire 1 Composer", Key: "repertoire1Composer", Required: true},
			{Header: "Repertoire 1 Time Period", Key: "repertoire1TimePeriod", Required: true},
			{Header: "Repertoire 2 Title", Key: "repertoire2Title", Required: true},
			{Header: "Repertoire 2 Composer", Key: "repertoire2Composer", Required: true},
			{Header: "Repertoire 2 Time Period", Key: "repertoire2TimePeriod", Required: true},
		},
	}
}

// StringDivisionSchema covers the string and cross-division forms. Rows
// land in the sheet named by the submitted division.
func StringDivisionSchema() CategorySchema {
	return CategorySchema{
		Category:     "strings",
		SheetNameKey: "division",
		Columns: []Column{
			{Header: "Student First Name", Key: "studentFirstName", Required: true},
			{Header: "Student Middle Name", Key: "studentMiddleName"},
			{Header: "Student Last Name", Key: "studentLastName", Required: true},
			{Header: "Instrument", Key: "instrument", Required: true},
			{Header: "Section", Key: "section", Required: true},
			{Header: "Age", Key: "studentAge", Required: true},
			{Header: "Date of Birth", Key: "dateOfBirth", Required: true},
			{Header: "Proof of Age URL", Key: "proofOfAgeUrl"},
			{Header: "Composer", Key: "composer", Required: true},
			{Header: "Piece Title", Key: "pieceTitle", Required: true},
			{Header: "Duration", Key: "duration", Required: true},
			{Header: "Pianist Name", Key: "pianistName", Required: true},
			{Header: "Pianist Phone", Key: "pianistPhone", Required: true},
			{Header: "Pianist Email", Key: "pianistEmail", Required: true},
			{Header: "Teacher Name", Key: "teacherName", Required: true},
			{Header: "Teacher Phone", Key: "teacherPhone", Required: true},
			{Header: "Teacher Email", Key: "teacherEmail", Required: true},
			{Header: "Parent Name", Key: "parentName", Required: true},
			{Header: "Parent Phone", Key: "parentPhone", Required: true},
			{Header: "Parent Email", Key: "parentEmail", Required: true},
			{Header: "Parent Street Address", Key: "parentStreetAddress", Required: true},
			{Header: "Parent Street Address 2", Key: "parentStreetAddress2"},
			{Header: "Parent City", Key: "parentCity", Required: true},
			{Header: "Parent State", Key: "parentState", Required: true},
			{Header: "Parent Zip Code", Key: "parentZipCode", Required: true},
			{Header: "Cross-Division", Key: "crossDivision", Required: true},
			{Header: "Cross-Division Details", Key: "crossDivisionDetails"},
		},
	}
}

// TeacherMembershipSchema is the annual teacher membership application.
func TeacherMembershipSchema() CategorySchema {
	return CategorySchema{
		Category:  "teacher-membership",
		SheetName: SheetTeacherMemberships,
		Columns: []Column{
			{Header: "First Name", Key: "firstName", Required: true},
			{Header: "Middle Name", Key: "middleName"},
			{Header: "Last Name", Key: "lastName", Required: true},
			{Header: "Street Address", Key: "streetAddress", Required: true},
			{Header: "Street Address 2", Key: "streetAddress2"},
			{Header: "City", Key: "city", Required: true},
			{Header: "State", Key: "state", Required: true},
			{Header: "Zip Code", Key: "zipCode", Required: true},
			{Header: "Email", Key: "email", Required: true},
			{Header: "Mobile Number", Key: "mobileNumber", Required: true},
			{Header: "Phone Number", Key: "phoneNumber", Required: true},
			{Header: "Instrument", Key: "instrument", Required: true},
			{Header: "String Instrument", Key: "stringInstrument"},
			{Header: "Help Preference", Key: "helpPreference", Required: true},
			{Header: "Sub Division", Key: "subDivision"},
			{Header: "Selected Products", Key: "selectedProducts", Required: true},
			{Header: "Total Amount", Key: "totalAmount"},
		},
	}
}
