// Package dto defines the RSS 2.0 subset returned by Google News search.
package dto

import "encoding/xml"

// RSS is the feed root.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel holds the search results.
type Channel struct {
	Title string `xml:"title"`
	Items []Item `xml:"item"`
}

// Item is one search hit. Description is HTML.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Source      Source `xml:"source"`
}

// Source names the publisher.
type Source struct {
	URL  string `xml:"url,attr"`
	Name string `xml:",chardata"`
}
