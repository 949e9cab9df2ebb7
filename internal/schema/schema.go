package schema

// Document bundles a document record with every page, element, and
// relationship record extracted from it, and is the unit the extraction
// engine returns and caches.
type Document struct {
	Record        DocumentRecord
	Pages         []PageRecord
	Elements      []ElementRecord
	Relationships []RelationshipRecord
}

// Validate runs every record's Validate method and merges the results,
// including the document-level cross-invariant checks against the actual
// page/element slices carried on d.
func (d Document) Validate() ValidationResult {
	var res ValidationResult

	res.Merge(d.Record.Validate(d.Pages, d.Elements))
	for _, p := range d.Pages {
		res.Merge(p.Validate())
	}
	for _, e := range d.Elements {
		res.Merge(e.Validate())
	}
	for _, r := range d.Relationships {
		res.Merge(r.Validate())
	}

	return res
}

// Reconcile overwrites d.Record's PageCount/TotalElements from the actual
// slice lengths, the auto-reconcile escape hatch.
func (d Document) Reconcile() Document {
	out := d
	out.Record = d.Record.Reconcile(d.Pages, d.Elements)
	return out
}

// ElementByID looks up an element by id among d.Elements.
func (d Document) ElementByID(id string) (ElementRecord, bool) {
	for _, e := range d.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return ElementRecord{}, false
}
