// Package twiml builds Twilio call-control documents as an ordered list of
// typed verbs, serialised to XML only at the boundary.
package twiml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Verb markers. Each verb is a plain struct whose xml tags define its
// serialised form; Document preserves append order.
type Start struct {
	XMLName xml.Name `xml:"Start"`
	Stream  Stream   `xml:"Stream"`
}

type Stream struct {
	URL   string `xml:"url,attr"`
	Track string `xml:"track,attr,omitempty"`
}

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
	Voice   string   `xml:"voice,attr,omitempty"`
}

type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type Gather struct {
	XMLName   xml.Name `xml:"Gather"`
	NumDigits int      `xml:"numDigits,attr"`
	Timeout   int      `xml:"timeout,attr"`
}

type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
	Method  string   `xml:"method,attr,omitempty"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Document is an ordered call-control response.
type Document struct {
	verbs []interface{}
}

func New() *Document { return &Document{} }

func (d *Document) Append(verb interface{}) *Document {
	d.verbs = append(d.verbs, verb)
	return d
}

// Verbs returns the ordered verb list. Useful for asserting document shape
// without parsing XML.
func (d *Document) Verbs() []interface{} { return d.verbs }

// XML serialises the document with the standard TwiML header.
func (d *Document) XML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{Name: xml.Name{Local: "Response"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("twiml: encode: %w", err)
	}
	for _, v := range d.verbs {
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("twiml: encode: %w", err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("twiml: encode: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("twiml: encode: %w", err)
	}
	return buf.Bytes(), nil
}
