// =============================================================================
// gomarc - MARCXML Writer
// =============================================================================
//
// This file serializes records as a MARCXML collection document:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <collection xmlns="http://www.loc.gov/MARC21/slim">
//     <record>
//       <leader>...</leader>
//       <controlfield tag="001">...</controlfield>
//       <datafield tag="245" ind1="1" ind2="0">
//         <subfield code="a">...</subfield>
//       </datafield>
//     </record>
//   </collection>
//
// Records are built token by token so that control and data fields stay
// interleaved in record order. The document is only valid after Close.
//
// =============================================================================

package marc

import (
	"encoding/xml"
	"io"
)

// MARCXMLNamespace is the namespace of the MARCXML schema.
const MARCXMLNamespace = "http://www.loc.gov/MARC21/slim"

// XMLWriter serializes records as a MARCXML collection.
type XMLWriter struct {
	w    io.Writer
	opts writerOptions
	err  error
}

// NewXMLWriter creates a MARCXML writer over w and emits the XML
// declaration and collection opener.
func NewXMLWriter(w io.Writer, opts ...WriterOption) *XMLWriter {
	xw := &XMLWriter{w: w, opts: newWriterOptions(opts)}
	_, xw.err = io.WriteString(w,
		`<?xml version="1.0" encoding="UTF-8"?><collection xmlns="`+MARCXMLNamespace+`">`)
	return xw
}

// Write serializes one record as a <record> element.
func (w *XMLWriter) Write(rec *Record) error {
	if w.err != nil {
		return w.err
	}
	if err := w.opts.prepare(rec); err != nil {
		return err
	}
	enc := xml.NewEncoder(w.w)
	if err := encodeXMLRecord(enc, rec); err != nil {
		w.err = err
		return err
	}
	if err := enc.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close emits the collection closer.
func (w *XMLWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	_, err := io.WriteString(w.w, "</collection>")
	return err
}

// encodeXMLRecord writes one record element token by token, preserving the
// interleaving of control and data fields.
func encodeXMLRecord(enc *xml.Encoder, rec *Record) error {
	recordStart := xml.StartElement{Name: xml.Name{Local: "record"}}
	if err := enc.EncodeToken(recordStart); err != nil {
		return err
	}

	if err := encodeXMLElement(enc, "leader", string(rec.Leader), nil); err != nil {
		return err
	}

	for _, field := range rec.Fields() {
		if field.IsControlField() {
			attrs := []xml.Attr{{Name: xml.Name{Local: "tag"}, Value: field.Tag}}
			if err := encodeXMLElement(enc, "controlfield", field.Data, attrs); err != nil {
				return err
			}
			continue
		}

		dataStart := xml.StartElement{
			Name: xml.Name{Local: "datafield"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "tag"}, Value: field.Tag},
				{Name: xml.Name{Local: "ind1"}, Value: field.Indicators[0]},
				{Name: xml.Name{Local: "ind2"}, Value: field.Indicators[1]},
			},
		}
		if err := enc.EncodeToken(dataStart); err != nil {
			return err
		}
		for _, sf := range field.Subfields {
			attrs := []xml.Attr{{Name: xml.Name{Local: "code"}, Value: sf.Code}}
			if err := encodeXMLElement(enc, "subfield", sf.Value, attrs); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(dataStart.End()); err != nil {
			return err
		}
	}

	return enc.EncodeToken(recordStart.End())
}

// encodeXMLElement writes a leaf element with character data and attributes.
func encodeXMLElement(enc *xml.Encoder, name, text string, attrs []xml.Attr) error {
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
