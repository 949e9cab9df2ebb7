package schema

// ValidationResult buckets issues by severity at Add time, with no
// deferred re-bucketing path. A record is invalid if and only if it has
// at least one error; warnings never affect Valid.
type ValidationResult struct {
	Errors   []error
	Warnings []error
}

// AddError records a hard validation failure.
func (r *ValidationResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// AddWarning records a soft validation note.
func (r *ValidationResult) AddWarning(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Valid reports whether the result carries zero errors.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// Merge folds other's errors and warnings into r.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
