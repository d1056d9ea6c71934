// Package deploy synchronizes built sites to a remote host with rsync over ssh.
//
// Deployer.DeploySite computes the remote path of one deployment directory, assembles
// the rsync command line and runs it through a Runner. Deployer.DeployAll does so for
// every built site, isolating failures per site the same way the build stage does.
//
// A missing rsync executable is reported as ErrToolNotFound and a non-zero exit as
// ErrTransferFailed; both match with errors.Is.
package deploy
