package model

// Profile is the snapshot of a single profile page.
// It is produced once per handle per run and every field is best-effort.
type Profile struct {
	// Handle is the account identifier the snapshot was taken for.
	Handle string `json:"handle"`

	// URL is the profile page address that was visited.
	URL string `json:"url"`

	// DisplayName is the human readable account name.
	DisplayName string `json:"display_name,omitempty"`

	// Bio is the free-text profile description.
	Bio string `json:"bio,omitempty"`

	// Website is the normalized external link shown on the profile.
	Website string `json:"website,omitempty"`

	// Category is the business category label, if the account has one.
	Category string `json:"category,omitempty"`

	// Followers, Following and Posts are kept as the page renders them
	// ("1.2M", "10,431") because the abbreviations are locale dependent.
	Followers string `json:"followers,omitempty"`
	Following string `json:"following,omitempty"`
	Posts     string `json:"posts,omitempty"`

	// MailLinks holds the addresses of mailto: links on the page.
	MailLinks []string `json:"mail_links,omitempty"`

	// Emails holds the verified addresses found in the bio. Only the
	// profile command fills it.
	Emails []string `json:"emails,omitempty"`
}

// HasBio reports whether a bio was found.
func (p *Profile) HasBio() bool {
	return p != nil && p.Bio != ""
}

// HasWebsite reports whether an external website was found.
func (p *Profile) HasWebsite() bool {
	return p != nil && p.Website != ""
}
