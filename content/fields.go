package content

// Reserved page fields. System fields start with a colon and are set by the
// store; user fields come from the page's data file.
const (
	FieldURL      = ":url"
	FieldPath     = ":path"
	FieldLevel    = ":level"
	FieldParent   = ":parent"
	FieldTemplate = ":template"
	FieldIndex    = ":index"

	FieldCurrent     = ":current"
	FieldCurrentPath = ":currentPath"
	FieldBasename    = ":basename"
	FieldMTime       = ":mtime"

	FieldTitle   = "title"
	FieldText    = "text"
	FieldDate    = "date"
	FieldTags    = "tags"
	FieldHidden  = "hidden"
	FieldPrivate = "private"
	FieldTheme   = "theme"
)

// Separator splits list values such as tags and file globs.
const Separator = ","

// MTimeLayout formats modification times.
const MTimeLayout = "2006-01-02 15:04:05"
