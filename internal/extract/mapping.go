package extract

import (
	"time"

	"github.com/docengine/core/internal/schema"
)

// field readers tolerate missing/mistyped keys by falling back to the zero
// value; extractors are free to omit anything they didn't detect.

func fstring(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fstrings(fields map[string]any, key string) []string {
	if v, ok := fields[key].([]string); ok {
		return v
	}
	return nil
}

func ffloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func fint(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func fbool(fields map[string]any, key string) bool {
	v, _ := fields[key].(bool)
	return v
}

func ftime(fields map[string]any, key string) time.Time {
	if v, ok := fields[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func fstringmap(fields map[string]any, key string) map[string]string {
	if v, ok := fields[key].(map[string]string); ok {
		return v
	}
	return nil
}

func ffloatmap(fields map[string]any, key string) map[string]float64 {
	if v, ok := fields[key].(map[string]float64); ok {
		return v
	}
	return nil
}

func fboolmap(fields map[string]any, key string) map[string]bool {
	if v, ok := fields[key].(map[string]bool); ok {
		return v
	}
	return nil
}

func fintmap(fields map[string]any, key string) map[string]int {
	if v, ok := fields[key].(map[string]int); ok {
		return v
	}
	return nil
}

func fintptr(fields map[string]any, key string) *int {
	switch v := fields[key].(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	}
	return nil
}

func fbbox(fields map[string]any, key string) schema.BoundingBox {
	nums, ok := fields[key].([]float64)
	if !ok || len(nums) != 4 {
		return schema.BoundingBox{}
	}
	return schema.NewBoundingBox(nums[0], nums[1], nums[2], nums[3])
}

func toDocumentRecord(fields map[string]any, confidence float64) schema.DocumentRecord {
	return schema.DocumentRecord{
		Title:              fstring(fields, "title"),
		Author:             fstring(fields, "author"),
		Subject:            fstring(fields, "subject"),
		Creator:            fstring(fields, "creator"),
		Producer:           fstring(fields, "producer"),
		Keywords:           fstrings(fields, "keywords"),
		CreationDate:       ftime(fields, "creation_date"),
		ModificationDate:   ftime(fields, "modification_date"),
		MetadataDate:       ftime(fields, "metadata_date"),
		Language:           fstring(fields, "language"),
		LanguageConfidence: ffloat(fields, "language_confidence"),
		Encoding:           fstring(fields, "encoding"),
		EncodingConfidence: ffloat(fields, "encoding_confidence"),
		PageCount:          fint(fields, "page_count"),
		TotalElements:      fint(fields, "total_elements"),
		SizeBytes:          int64(fint(fields, "size_bytes")),
		Format:             fstring(fields, "format"),
		Encrypted:          fbool(fields, "encrypted"),
		Signed:             fbool(fields, "signed"),
		Permissions:        fboolmap(fields, "permissions"),
		Quality:            ffloatmap(fields, "quality"),
		Confidence:         confidence,
	}
}

func toPageRecord(fields map[string]any, confidence float64) schema.PageRecord {
	return schema.PageRecord{
		DocumentID:          fstring(fields, "document_id"),
		PageNumber:          fint(fields, "page_number"),
		Width:               ffloat(fields, "width"),
		Height:              ffloat(fields, "height"),
		Rotation:            ffloat(fields, "rotation"),
		ElementCountsByType: fintmap(fields, "element_counts_by_type"),
		ElementCount:        fint(fields, "element_count"),
		WordCount:           fint(fields, "word_count"),
		CharCount:           fint(fields, "char_count"),
		ParagraphCount:      fint(fields, "paragraph_count"),
		ColumnCount:         fint(fields, "column_count"),
		HasHeader:           fbool(fields, "has_header"),
		HasFooter:           fbool(fields, "has_footer"),
		Margins:             ffloatmap(fields, "margins"),
		Quality:             ffloatmap(fields, "quality"),
		Confidence:          confidence,
	}
}

func toElementRecord(fields map[string]any, confidence float64) schema.ElementRecord {
	return schema.ElementRecord{
		ID:            fstring(fields, "id"),
		Type:          fstring(fields, "type"),
		PageNumber:    fint(fields, "page_number"),
		BoundingBox:   fbbox(fields, "bounding_box"),
		ReadingOrder:  fint(fields, "reading_order"),
		Text:          fstring(fields, "text"),
		Formatting:    fstringmap(fields, "formatting"),
		HeadingLevel:     fintptr(fields, "heading_level"),
		ListItemLevel:    fintptr(fields, "list_item_level"),
		ParentID:         fstring(fields, "parent_id"),
		DetectionMethod:  fstring(fields, "detection_method"),
		CoordinateSystem: fstring(fields, "coordinate_system"),
		Confidence:       confidence,
	}
}

func toRelationshipRecord(fields map[string]any, confidence float64) schema.RelationshipRecord {
	return schema.RelationshipRecord{
		SourceID:   fstring(fields, "source_id"),
		TargetID:   fstring(fields, "target_id"),
		Type:       fstring(fields, "type"),
		Strength:   ffloat(fields, "strength"),
		Direction:  schema.RelationshipDirection(fstring(fields, "direction")),
		Confidence: confidence,
	}
}

func countNonEmptyFields(fields map[string]any) (total, nonEmpty int) {
	total = len(fields)
	for _, v := range fields {
		switch val := v.(type) {
		case nil:
		case string:
			if val != "" {
				nonEmpty++
			}
		case []string:
			if len(val) > 0 {
				nonEmpty++
			}
		default:
			nonEmpty++
		}
	}
	return
}
