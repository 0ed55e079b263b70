// Package feed parses podcast RSS feeds and queries the iTunes Search API
// for podcast discovery, the two external data sources named in the
// component design's data flow.
package feed

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parsed is one subscribable feed, decoded from RSS 2.0 plus the iTunes
// podcast namespace extensions.
type Parsed struct {
	Title       string
	Description string
	Link        string
	Episodes    []ParsedEpisode
}

// ParsedEpisode is one <item> entry, with the fields required by the data
// model (spec §4.10 episode record) pulled out of their RSS/iTunes
// representations.
type ParsedEpisode struct {
	Title        string
	Description  string
	GUID         string
	EnclosureURL string
	PubDate      time.Time
	Duration     time.Duration
	EpisodeNum   *int
	SeasonNum    *int
	Blocked      bool
}

type rssDocument struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Link        string    `xml:"link"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	GUID        string       `xml:"guid"`
	Link        string       `xml:"link"`
	PubDate     string       `xml:"pubDate"`
	Enclosure   *rssEnclosure `xml:"enclosure"`
	Duration    string       `xml:"duration"`
	Episode     string       `xml:"episode"`
	Season      string       `xml:"season"`
	Block       string       `xml:"block"`
}

type rssEnclosure struct {
	URL string `xml:"url,attr"`
}

// Parse decodes an RSS 2.0 document with iTunes podcast extensions.
// Every episode gets a guid (falling back to the enclosure URL when
// absent); the only required field is a non-empty enclosure URL, and an
// episode missing it is dropped rather than failing the whole feed, since
// one malformed item in a large feed shouldn't make the rest unusable.
func Parse(data []byte) (Parsed, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Parsed{}, fmt.Errorf("parse RSS: %w", err)
	}
	if doc.Channel.Title == "" {
		return Parsed{}, fmt.Errorf("parse RSS: missing channel title")
	}
	out := Parsed{
		Title:       doc.Channel.Title,
		Description: doc.Channel.Description,
		Link:        doc.Channel.Link,
	}
	for _, item := range doc.Channel.Items {
		if item.Enclosure == nil || item.Enclosure.URL == "" {
			continue
		}
		guid := item.GUID
		if guid == "" {
			guid = item.Enclosure.URL
		}
		pub, _ := parsePubDate(item.PubDate)
		ep := ParsedEpisode{
			Title:        item.Title,
			Description:  item.Description,
			GUID:         guid,
			EnclosureURL: item.Enclosure.URL,
			PubDate:      pub,
			Duration:     parseITunesDuration(item.Duration),
			EpisodeNum:   parseIntPtr(item.Episode),
			SeasonNum:    parseIntPtr(item.Season),
			Blocked:      strings.EqualFold(strings.TrimSpace(item.Block), "yes"),
		}
		out.Episodes = append(out.Episodes, ep)
	}
	return out, nil
}

// parsePubDate parses RFC 2822 ("Mon, 02 Jan 2006 15:04:05 -0700"), the
// format RSS pubDate uses, converting to UTC.
func parsePubDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty pubDate")
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, "Mon, 2 Jan 2006 15:04:05 -0700", "2 Jan 2006 15:04:05 -0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized pubDate format: %q", s)
}

// parseITunesDuration accepts itunes:duration in its three documented
// forms: plain seconds ("3600"), "M:S", and "H:M:S".
func parseITunesDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	var h, m, sec int
	switch len(parts) {
	case 1:
		sec, _ = strconv.Atoi(parts[0])
	case 2:
		m, _ = strconv.Atoi(parts[0])
		sec, _ = strconv.Atoi(parts[1])
	case 3:
		h, _ = strconv.Atoi(parts[0])
		m, _ = strconv.Atoi(parts[1])
		sec, _ = strconv.Atoi(parts[2])
	default:
		return 0
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
}

func parseIntPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
