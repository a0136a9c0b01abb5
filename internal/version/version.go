package version

// Tag holds the build version. Override at build time with:
// go build -ldflags "-X github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/version.Tag=v1.2.3".
var Tag = "dev"

// Commit is the VCS revision, set the same way as Tag.
var Commit = ""

// String returns the version, "dev" when Tag is unset, with the short
// commit appended when known.
func String() string {
	tag := Tag
	if tag == "" {
		tag = "dev"
	}
	if len(Commit) > 7 {
		return tag + " (" + Commit[:7] + ")"
	}
	if Commit != "" {
		return tag + " (" + Commit + ")"
	}
	return tag
}
