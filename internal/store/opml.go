package store

import (
	"context"
	"encoding/xml"
	"fmt"
)

type opmlDocument struct {
	XMLName xml.Name   `xml:"opml"`
	Version string     `xml:"version,attr"`
	Head    opmlHead   `xml:"head"`
	Body    opmlBody   `xml:"body"`
}

type opmlHead struct {
	Title string `xml:"title"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr,omitempty"`
	Type     string        `xml:"type,attr,omitempty"`
	XMLURL   string        `xml:"xmlUrl,attr,omitempty"`
	Outlines []opmlOutline `xml:"outline,omitempty"`
}

// ExportOPML serializes every group and feed to an OPML 2.0 document,
// grouped feeds nested under a group outline and ungrouped feeds at the
// top level. Note the element name is the correctly spelled "outline"
// (an earlier revision of this format had a typo here; OPML readers
// require the standard spelling).
func (s *Store) ExportOPML(ctx context.Context) ([]byte, error) {
	feeds, err := s.FeedSummaries(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[GroupID][]Feed)
	var ungrouped []Feed
	for _, f := range feeds {
		if f.Group == nil {
			ungrouped = append(ungrouped, f)
			continue
		}
		byGroup[*f.Group] = append(byGroup[*f.Group], f)
	}

	doc := opmlDocument{Version: "2.0", Head: opmlHead{Title: "hedgepod subscriptions"}}
	for _, g := range groups {
		groupOutline := opmlOutline{Text: g.Name, Title: g.Name}
		for _, f := range byGroup[g.ID] {
			groupOutline.Outlines = append(groupOutline.Outlines, feedOutline(f))
		}
		doc.Body.Outlines = append(doc.Body.Outlines, groupOutline)
	}
	for _, f := range ungrouped {
		doc.Body.Outlines = append(doc.Body.Outlines, feedOutline(f))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func feedOutline(f Feed) opmlOutline {
	return opmlOutline{Text: f.Title, Title: f.Title, Type: "rss", XMLURL: f.URL}
}

// ImportOPML subscribes to every feed named in an OPML document via w,
// creating a group for each top-level outline that itself contains
// outlines (rather than being a feed outline).
func (w *WriterSession) ImportOPML(ctx context.Context, data []byte) (int, error) {
	var doc opmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse OPML: %w", err)
	}
	added := 0
	for _, o := range doc.Body.Outlines {
		if o.XMLURL != "" {
			if _, err := w.AddFeed(ctx, displayTitle(o), o.XMLURL, nil); err != nil {
				return added, err
			}
			added++
			continue
		}
		groupID, err := w.AddGroup(ctx, o.Text)
		if err != nil {
			return added, err
		}
		for _, child := range o.Outlines {
			if child.XMLURL == "" {
				continue
			}
			if _, err := w.AddFeed(ctx, displayTitle(child), child.XMLURL, &groupID); err != nil {
				return added, err
			}
			added++
		}
	}
	return added, nil
}

func displayTitle(o opmlOutline) string {
	if o.Title != "" {
		return o.Title
	}
	return o.Text
}
