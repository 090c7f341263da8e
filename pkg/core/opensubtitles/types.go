package opensubtitles

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful POST /login.
type LoginResponse struct {
	User   User   `json:"user"`
	Token  string `json:"token"`
	Status int    `json:"status"`
}

// User describes the account and its download allowance.
type User struct {
	UserID             int    `json:"user_id"`
	Username           string `json:"username"`
	Level              string `json:"level"`
	VIP                bool   `json:"vip"`
	AllowedDownloads   int    `json:"allowed_downloads"`
	DownloadsCount     int    `json:"downloads_count"`
	RemainingDownloads *int   `json:"remaining_downloads,omitempty"`
}

type userInfoResponse struct {
	Data User `json:"data"`
}

// searchResponse keeps Data as a pointer so a missing "data" field can be
// told apart from an empty result set.
type searchResponse struct {
	TotalPages int         `json:"total_pages"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	Data       *[]Subtitle `json:"data"`
}

// Subtitle is one search result entry.
type Subtitle struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes SubtitleAttributes `json:"attributes"`
}

// SubtitleAttributes holds the fields of a result entry.
type SubtitleAttributes struct {
	SubtitleID        string         `json:"subtitle_id"`
	Language          string         `json:"language"`
	DownloadCount     int            `json:"download_count"`
	HearingImpaired   bool           `json:"hearing_impaired"`
	HD                bool           `json:"hd"`
	FPS               float64        `json:"fps"`
	Votes             int            `json:"votes"`
	Ratings           float64        `json:"ratings"`
	FromTrusted       bool           `json:"from_trusted"`
	ForeignPartsOnly  bool           `json:"foreign_parts_only"`
	MachineTranslated bool           `json:"machine_translated"`
	AITranslated      bool           `json:"ai_translated"`
	UploadDate        string         `json:"upload_date"`
	Release           string         `json:"release"`
	Comments          string         `json:"comments"`
	URL               string         `json:"url"`
	MoviehashMatch    bool           `json:"moviehash_match"`
	Uploader          UploaderInfo   `json:"uploader"`
	FeatureDetails    FeatureInfo    `json:"feature_details"`
	Files             []SubtitleFile `json:"files"`
}

// UploaderInfo identifies who uploaded a subtitle.
type UploaderInfo struct {
	UploaderID int    `json:"uploader_id"`
	Name       string `json:"name"`
	Rank       string `json:"rank"`
}

// FeatureInfo describes the movie or episode a subtitle belongs to.
type FeatureInfo struct {
	FeatureID     int    `json:"feature_id"`
	FeatureType   string `json:"feature_type"`
	Year          int    `json:"year"`
	Title         string `json:"title"`
	MovieName     string `json:"movie_name"`
	IMDbID        int    `json:"imdb_id"`
	TMDBID        int    `json:"tmdb_id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	ParentTitle   string `json:"parent_title"`
}

// SubtitleFile is a downloadable file of a subtitle entry.
type SubtitleFile struct {
	FileID   int    `json:"file_id"`
	FileName string `json:"file_name"`
	CDNumber int    `json:"cd_number"`
}

// FileID returns the first file identifier of the entry, 0 if it has none.
func (s Subtitle) FileID() int {
	if len(s.Attributes.Files) == 0 {
		return 0
	}
	return s.Attributes.Files[0].FileID
}

// DownloadRequest is the body of POST /download.
type DownloadRequest struct {
	FileID int `json:"file_id"`
}

// DownloadResponse is the body of a successful POST /download.
type DownloadResponse struct {
	Link         string `json:"link"`
	FileName     string `json:"file_name"`
	Requests     int    `json:"requests"`
	Remaining    *int   `json:"remaining"`
	Message      string `json:"message"`
	ResetTime    string `json:"reset_time"`
	ResetTimeUTC string `json:"reset_time_utc"`
}

// DownloadParams selects the file to download and where to put it.
type DownloadParams struct {
	FileID int
	// VideoPath supplies the default directory and base name.
	VideoPath       string
	OutputDirectory string
	OutputFilename  string
	// Language and Forced become filename suffixes: name.<lang>[.forced].srt
	Language  string
	Forced    bool
	Overwrite bool
}

// DownloadResult reports where the subtitle is. AlreadyPresent means the
// file existed and nothing was downloaded.
type DownloadResult struct {
	Path           string
	AlreadyPresent bool
	Bytes          int
	Remaining      int
}
