// Package project manages the starkeeper workspace: the starkeeper.yaml
// configuration file and the backup directory. Initialization is idempotent
// and only creates what is missing, so re-running init never clobbers an
// edited configuration or existing backups.
package project
