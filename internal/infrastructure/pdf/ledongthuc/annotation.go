package ledongthuc

import (
	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

var annotationTypes = map[string]ports.AnnotationType{
	"Text":           ports.AnnotationText,
	"Link":           ports.AnnotationLink,
	"FreeText":       ports.AnnotationFreeText,
	"Line":           ports.AnnotationLine,
	"Square":         ports.AnnotationSquare,
	"Circle":         ports.AnnotationCircle,
	"Polygon":        ports.AnnotationPolygon,
	"PolyLine":       ports.AnnotationPolyLine,
	"Highlight":      ports.AnnotationHighlight,
	"Underline":      ports.AnnotationUnderline,
	"Squiggly":       ports.AnnotationSquiggly,
	"StrikeOut":      ports.AnnotationStrikeOut,
	"Redact":         ports.AnnotationRedact,
	"Stamp":          ports.AnnotationStamp,
	"Caret":          ports.AnnotationCaret,
	"Ink":            ports.AnnotationInk,
	"Popup":          ports.AnnotationPopup,
	"FileAttachment": ports.AnnotationFileAttachment,
	"Sound":          ports.AnnotationSound,
	"Movie":          ports.AnnotationMovie,
	"RichMedia":      ports.AnnotationRichMedia,
	"Widget":         ports.AnnotationWidget,
	"Screen":         ports.AnnotationScreen,
	"PrinterMark":    ports.AnnotationPrinterMark,
	"TrapNet":        ports.AnnotationTrapNet,
	"Watermark":      ports.AnnotationWatermark,
	"3D":             ports.Annotation3D,
	"Projection":     ports.AnnotationProjection,
}

func annotationType(subtype string) ports.AnnotationType {
	if t, ok := annotationTypes[subtype]; ok {
		return t
	}
	return ports.AnnotationUnknown
}

func decodeAnnotation(v pdf.Value) ports.Annotation {
	return ports.Annotation{
		Type:     annotationType(v.Key("Subtype").Name()),
		Rect:     decodeRect(v.Key("Rect")),
		Color:    numbers(v.Key("C")),
		HasPopup: !v.Key("Popup").IsNull(),
		Contents: v.Key("Contents").Text(),
	}
}

func decodeRect(v pdf.Value) ports.Rect {
	n := numbers(v)
	if len(n) < 4 {
		return ports.Rect{}
	}
	return ports.Rect{X0: n[0], Y0: n[1], X1: n[2], Y1: n[3]}.Normalize()
}

func numbers(v pdf.Value) []float64 {
	if v.Kind() != pdf.Array {
		return nil
	}
	out := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		switch item.Kind() {
		case pdf.Integer, pdf.Real:
			out = append(out, item.Float64())
		}
	}
	return out
}
