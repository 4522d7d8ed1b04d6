package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LinkAttachment is the attachment shape sent by this software's peers.
type LinkAttachment struct {
	Href      string  `json:"href"`
	MediaType *string `json:"mediaType,omitempty"`
	Type      string  `json:"type"`
	// Name carries the alt text.
	Name *string `json:"name,omitempty"`
}

// ImageAttachment is the shape sent by lotide.
type ImageAttachment struct {
	Type string  `json:"type"`
	URL  string  `json:"url"`
	Name *string `json:"name,omitempty"`
}

// DocumentAttachment is the shape sent by mobilizon.
type DocumentAttachment struct {
	Type string  `json:"type"`
	URL  string  `json:"url"`
	Name *string `json:"name,omitempty"`
}

// Attachment normalizes the three incompatible peer representations of a
// media attachment. The wire form carries no reliable discriminant, so
// decoding tries the variants structurally, in the fixed order Link,
// Image, Document; the order encodes interoperability priority and must
// not change. Exactly one variant pointer is set.
type Attachment struct {
	Link     *LinkAttachment
	Image    *ImageAttachment
	Document *DocumentAttachment
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var link LinkAttachment
	if err := json.Unmarshal(data, &link); err == nil && link.Type == "Link" && link.Href != "" {
		a.Link = &link
		return nil
	}

	var image ImageAttachment
	if err := json.Unmarshal(data, &image); err == nil && image.Type == "Image" && image.URL != "" {
		a.Image = &image
		return nil
	}

	var document DocumentAttachment
	if err := json.Unmarshal(data, &document); err == nil && document.Type == "Document" && document.URL != "" {
		a.Document = &document
		return nil
	}

	return fmt.Errorf("attachment matches no known variant")
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	switch {
	case a.Link != nil:
		return json.Marshal(a.Link)
	case a.Image != nil:
		return json.Marshal(a.Image)
	case a.Document != nil:
		return json.Marshal(a.Document)
	}
	return nil, fmt.Errorf("attachment has no variant set")
}

// URL returns the attachment target regardless of variant.
func (a Attachment) URL() string {
	switch {
	case a.Link != nil:
		return a.Link.Href
	case a.Image != nil:
		return a.Image.URL
	case a.Document != nil:
		return a.Document.URL
	}
	return ""
}

// AltText returns the alt text regardless of variant, nil when absent.
func (a Attachment) AltText() *string {
	switch {
	case a.Link != nil:
		return a.Link.Name
	case a.Image != nil:
		return a.Image.Name
	case a.Document != nil:
		return a.Document.Name
	}
	return nil
}

// NewAttachment builds an outbound attachment for a url and mime type.
// Image mime types map to the Image variant for peer compatibility.
func NewAttachment(url string, mediaType, name *string) Attachment {
	if mediaType != nil && strings.HasPrefix(*mediaType, "image") {
		return Attachment{Image: &ImageAttachment{
			Type: "Image",
			URL:  url,
			Name: name,
		}}
	}
	return Attachment{Link: &LinkAttachment{
		Href:      url,
		MediaType: mediaType,
		Type:      "Link",
		Name:      name,
	}}
}
