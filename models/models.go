// models/models.go
package models

import (
	"encoding/xml"
	"time"
)

// User представляет аутентифицированного пользователя (принципала).
// Token используется для запросов к Audiobookshelf и встраивается
// в ссылки скачивания. Password задан только для статических пользователей.
type User struct {
	Name     string
	Token    string
	Password string
}

// Library представляет библиотеку Audiobookshelf
type Library struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// LibraryItem нормализованный элемент каталога
type LibraryItem struct {
	ID            string
	Title         string
	Subtitle      string
	Description   string
	Publisher     string
	ISBN          string
	PublishedYear string
	Language      string
	Authors       []string
	Narrators     []string
	Genres        []string
	Tags          []string
	Series        []string
	Format        Format
}

// Feed представляет собой OPDS каталог
type Feed struct {
	XMLName         xml.Name        `xml:"feed"`
	Xmlns           string          `xml:"xmlns,attr"`
	XmlnsOpds       string          `xml:"xmlns:opds,attr"`
	XmlnsDcterms    string          `xml:"xmlns:dcterms,attr"`
	XmlnsOpensearch string          `xml:"xmlns:opensearch,attr"`
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Authentication  *Authentication `xml:"authentication"`
	Updated         string          `xml:"updated"`
	TotalResults    string          `xml:"opensearch:totalResults,omitempty"`
	StartIndex      string          `xml:"opensearch:startIndex,omitempty"`
	ItemsPerPage    string          `xml:"opensearch:itemsPerPage,omitempty"`
	Links           []Link          `xml:"link"`
	Entries         []Entry         `xml:"entry"`
}

// Authentication блок, объявляющий Basic-схему аутентификации каталога
type Authentication struct {
	Type   string     `xml:"type"`
	Labels AuthLabels `xml:"labels"`
}

// AuthLabels подписи полей формы логина для клиентов-читалок
type AuthLabels struct {
	Login    string `xml:"login"`
	Password string `xml:"password"`
}

// Entry представляет собой запись в каталоге (книга, библиотека или категория)
type Entry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Subtitle   string        `xml:"subtitle,omitempty"`
	Updated    string        `xml:"updated,omitempty"`
	Content    *Content      `xml:"content,omitempty"`
	Publisher  string        `xml:"publisher,omitempty"`
	ISBN       string        `xml:"isbn,omitempty"`
	Published  string        `xml:"published,omitempty"`
	Language   string        `xml:"language,omitempty"`
	Authors    []EntryAuthor `xml:"author,omitempty"`
	Categories []Category    `xml:"category,omitempty"`
	Links      []Link        `xml:"link"`
}

// EntryAuthor представляет автора внутри записи фида
type EntryAuthor struct {
	Name string `xml:"name"`
}

// Category элемент категории (жанр или тег) в записи
type Category struct {
	Label string `xml:"label,attr"`
	Term  string `xml:"term,attr"`
}

// Content содержит описание записи
type Content struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

// Link представляет собой ссылку на ресурс
type Link struct {
	Rel   string `xml:"rel,attr,omitempty"`
	Type  string `xml:"type,attr,omitempty"`
	Title string `xml:"title,attr,omitempty"`
	Href  string `xml:"href,attr"`
}

// OpenSearchDescription отдельный документ описания поиска
type OpenSearchDescription struct {
	XMLName     xml.Name      `xml:"OpenSearchDescription"`
	Xmlns       string        `xml:"xmlns,attr"`
	XmlnsAtom   string        `xml:"xmlns:atom,attr"`
	ShortName   string        `xml:"ShortName"`
	LongName    string        `xml:"LongName"`
	Description string        `xml:"Description"`
	URL         OpenSearchURL `xml:"Url"`
}

// OpenSearchURL шаблон поискового URL
type OpenSearchURL struct {
	Type     string `xml:"type,attr"`
	Template string `xml:"template,attr"`
}

// AuthTypeBasic тип аутентификации по спецификации OPDS
const AuthTypeBasic = "http://opds-spec.org/auth/basic"

// OPDSTimeFormat формат временных меток в фидах
const OPDSTimeFormat = time.RFC3339

// NewFeed создает новый OPDS фид с обязательным заголовком:
// пространства имен, блок аутентификации и метка времени.
func NewFeed(id, title, loginLabel, passwordLabel string) *Feed {
	return &Feed{
		Xmlns:           "http://www.w3.org/2005/Atom",
		XmlnsOpds:       "http://opds-spec.org/2010/catalog",
		XmlnsDcterms:    "http://purl.org/dc/terms/",
		XmlnsOpensearch: "http://a9.com/-/spec/opensearch/1.1/",
		ID:              id,
		Title:           title,
		Authentication: &Authentication{
			Type: AuthTypeBasic,
			Labels: AuthLabels{
				Login:    loginLabel,
				Password: passwordLabel,
			},
		},
		Updated: time.Now().UTC().Format(OPDSTimeFormat),
	}
}
