package wix

import (
	"encoding/json"
	"strings"
)

// Member is a site member as returned by the Members API with the FULL fieldset
type Member struct {
	ID         string  `json:"id"`
	LoginEmail string  `json:"loginEmail,omitempty"`
	Contact    Contact `json:"contact"`
	Profile    Profile `json:"profile"`
	Status     string  `json:"status,omitempty"`
}

type Contact struct {
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Emails    []string `json:"emails,omitempty"`
}

type Profile struct {
	Nickname string `json:"nickname,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Photo    *Photo `json:"photo,omitempty"`
}

// Photo is a member profile image. ID refers to a Wix Media file when set.
type Photo struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Height  int    `json:"height,omitempty"`
	Width   int    `json:"width,omitempty"`
	OffsetX *int   `json:"offsetX,omitempty"`
	OffsetY *int   `json:"offsetY,omitempty"`
}

// UnmarshalJSON accepts both the REST ("id") and SDK ("_id") spellings.
// Webhook payloads use the latter.
func (m *Member) UnmarshalJSON(data []byte) error {
	type plain Member
	var aux struct {
		plain
		UnderscoreID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Member(aux.plain)
	if m.ID == "" {
		m.ID = aux.UnderscoreID
	}
	return nil
}

// Email returns the login email, else the first contact email
func (m *Member) Email() string {
	if e := strings.TrimSpace(m.LoginEmail); e != "" {
		return e
	}
	for _, e := range m.Contact.Emails {
		if e = strings.TrimSpace(e); e != "" {
			return e
		}
	}
	return ""
}

// PhotoURL returns the trimmed profile photo URL, empty when unset
func (m *Member) PhotoURL() string {
	if m.Profile.Photo == nil {
		return ""
	}
	return strings.TrimSpace(m.Profile.Photo.URL)
}

func (m *Member) HasPhoto() bool {
	return m.PhotoURL() != ""
}

// DisplayName is the nickname, else the slug
func (m *Member) DisplayName() string {
	if m.Profile.Nickname != "" {
		return m.Profile.Nickname
	}
	return m.Profile.Slug
}

// AppInstance describes the site that installed the app
type AppInstance struct {
	InstanceID string `json:"instanceId"`
	AppName    string `json:"appName,omitempty"`
	SiteName   string `json:"siteName,omitempty"`
	OwnerEmail string `json:"ownerEmail,omitempty"`
}

// ImportedFile is a file imported into the site's Media Manager
type ImportedFile struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Message directions used by the Inbox API
const (
	DirectionParticipantToBusiness = "PARTICIPANT_TO_BUSINESS"
	DirectionBusinessToParticipant = "BUSINESS_TO_PARTICIPANT"
)

// InboxMessage is the part of an inbox message the guard cares about
type InboxMessage struct {
	ConversationID string
	MessageID      string
	Direction      string
	Text           string
}

// FromParticipant reports whether a site visitor wrote the message.
// Events without a direction are sent-to-business events, so they count.
func (m *InboxMessage) FromParticipant() bool {
	return m.Direction != DirectionBusinessToParticipant
}
