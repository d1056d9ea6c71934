package deploy

import (
	"path"

	"git.home.luguber.info/inful/sitedeploy/internal/validate"
)

const (
	// Tool is the executable invoked for transfers.
	Tool = "rsync"
	// PlaceholderHost stands in for the remote host on dry runs without one.
	PlaceholderHost = "192.168.0.1"

	sshCommand = "ssh -o UserKnownHostsFile=/dev/null -o StrictHostKeyChecking=no"
)

// Target describes where and how sites are transferred.
type Target struct {
	Host         validate.Hostname
	Username     *validate.Username
	Directory    string
	IdentityFile *validate.IdentityFile
	DryRun       bool
}

// RemotePath returns the directory a site is synchronized into.
//
//	directory and username: /home/<user>/<directory>/<site>
//	directory only:         /<directory>/<site>
//	username only:          /home/<user>/<site>
//	neither:                /srv/<site>
//
// With a username the directory is always placed below the home directory, even when
// it is given as an absolute path.
func RemotePath(site string, username *validate.Username, directory string) string {
	switch {
	case directory != "" && username != nil:
		return path.Join("/home", username.String(), directory, site)
	case directory != "":
		return path.Join("/", directory, site)
	case username != nil:
		return path.Join("/home", username.String(), site)
	default:
		return path.Join("/srv", site)
	}
}

// Destination renders the rsync destination [user@]host:remotePath.
func Destination(t Target, remotePath string) string {
	host := t.Host.String()
	if t.Username != nil {
		host = t.Username.String() + "@" + host
	}
	return host + ":" + remotePath
}

// Args returns the rsync arguments transferring sitePath to remotePath on t.
func Args(sitePath, remotePath string, t Target, verbose bool) []string {
	ssh := sshCommand
	if t.IdentityFile != nil {
		ssh += " -i " + t.IdentityFile.String()
	}
	args := []string{
		"--recursive",
		"--times",
		"--copy-links",
		"--copy-dirlinks",
		"--compress",
		"--checksum",
		"--delete",
		"--timeout=5",
		"-e", ssh,
	}
	if t.DryRun {
		args = append(args, "--dry-run")
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return append(args, withTrailingSlash(sitePath), Destination(t, remotePath))
}

func withTrailingSlash(p string) string {
	if p != "" && p[len(p)-1] == '/' {
		return p
	}
	return p + "/"
}
