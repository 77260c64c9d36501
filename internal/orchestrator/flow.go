// Package orchestrator drives the interactive server → backup → download flow.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/atbphosting/clumsyloader/internal/download"
	"github.com/atbphosting/clumsyloader/internal/panel"
	"github.com/atbphosting/clumsyloader/internal/tui"
	"github.com/rs/zerolog/log"
)

const (
	msgNoServers = "No servers were found in your account."
	msgNoBackups = "No backups available for the selected server."

	serverMenuTitle = "🖥️  Select a server"
	backupMenuTitle = "📦 Select a backup"
)

// Panel is the subset of the panel API the flow needs
type Panel interface {
	ListServers(ctx context.Context) ([]panel.Server, error)
	ListBackups(ctx context.Context, serverUUID string) ([]panel.Backup, error)
	DownloadLink(ctx context.Context, serverIdentifier, backupUUID string) (string, error)
}

// Chooser shows a menu. ok is false when the user backed out.
type Chooser interface {
	Choose(ctx context.Context, title string, items []string) (index int, ok bool, err error)
}

// Fetcher downloads the archive behind a signed link
type Fetcher interface {
	Fetch(ctx context.Context, link, backupUUID string, total uint64) (*download.Result, error)
}

// Notifier reports non-fatal conditions, such as a server with no backups
type Notifier interface {
	Warn(msg string)
}

// State is a node of the navigation state machine
type State int

const (
	StateServerSelect State = iota
	StateBackupSelect
	StateDownload
	StateExit
)

func (s State) String() string {
	switch s {
	case StateServerSelect:
		return "server-select"
	case StateBackupSelect:
		return "backup-select"
	case StateDownload:
		return "download"
	case StateExit:
		return "exit"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome says why a flow reached StateExit without an error
type Outcome int

const (
	OutcomeUserExit Outcome = iota
	OutcomeNoServers
	OutcomeDownloaded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUserExit:
		return "user-exit"
	case OutcomeNoServers:
		return "no-servers"
	case OutcomeDownloaded:
		return "downloaded"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what a finished flow produced.
// Server, Backup and Download are only set for OutcomeDownloaded.
type Result struct {
	Outcome  Outcome
	Server   panel.Server
	Backup   panel.Backup
	Download *download.Result
}

// Flow holds the data of one run. A Flow is not reusable.
type Flow struct {
	panel    Panel
	chooser  Chooser
	fetcher  Fetcher
	notifier Notifier

	server panel.Server
	backup panel.Backup
	result Result
}

// New returns a Flow positioned at server selection
func New(p Panel, c Chooser, f Fetcher, n Notifier) *Flow {
	return &Flow{panel: p, chooser: c, fetcher: f, notifier: n}
}

// Run drives the state machine from server selection until exit.
// Any error aborts the flow.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	state := StateServerSelect
	for state != StateExit {
		next, err := f.step(ctx, state)
		if err != nil {
			return nil, err
		}
		log.Debug().Stringer("from", state).Stringer("to", next).Msg("flow transition")
		state = next
	}
	return &f.result, nil
}

func (f *Flow) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StateServerSelect:
		return f.selectServer(ctx)
	case StateBackupSelect:
		return f.selectBackup(ctx)
	case StateDownload:
		return f.download(ctx)
	default:
		return StateExit, fmt.Errorf("unknown state %v", state)
	}
}

func (f *Flow) selectServer(ctx context.Context) (State, error) {
	servers, err := f.panel.ListServers(ctx)
	if err != nil {
		return StateExit, fmt.Errorf("fetching servers: %w", err)
	}
	if len(servers) == 0 {
		f.notifier.Warn(msgNoServers)
		f.result.Outcome = OutcomeNoServers
		return StateExit, nil
	}

	index, ok, err := f.chooser.Choose(ctx, serverMenuTitle, ServerItems(servers))
	if err != nil {
		return StateExit, err
	}
	if !ok || index == 0 {
		f.result.Outcome = OutcomeUserExit
		return StateExit, nil
	}

	f.server = servers[index-1]
	return StateBackupSelect, nil
}

func (f *Flow) selectBackup(ctx context.Context) (State, error) {
	backups, err := f.panel.ListBackups(ctx, f.server.UUID)
	if err != nil {
		return StateExit, fmt.Errorf("fetching backups for %s: %w", f.server.Name, err)
	}
	if len(backups) == 0 {
		f.notifier.Warn(msgNoBackups)
		return StateServerSelect, nil
	}

	index, ok, err := f.chooser.Choose(ctx, backupMenuTitle, BackupItems(backups))
	if err != nil {
		return StateExit, err
	}
	if !ok || index == 0 {
		return StateServerSelect, nil
	}

	f.backup = backups[index-1]
	return StateDownload, nil
}

func (f *Flow) download(ctx context.Context) (State, error) {
	link, err := f.panel.DownloadLink(ctx, f.server.Identifier, f.backup.UUID)
	if err != nil {
		return StateExit, fmt.Errorf("requesting download link: %w", err)
	}

	res, err := f.fetcher.Fetch(ctx, link, f.backup.UUID, f.backup.Bytes)
	if err != nil {
		return StateExit, fmt.Errorf("downloading backup %s: %w", f.backup.Name, err)
	}

	f.result = Result{
		Outcome:  OutcomeDownloaded,
		Server:   f.server,
		Backup:   f.backup,
		Download: res,
	}
	return StateExit, nil
}

// ServerItems builds the server menu: the back entry followed by each name
func ServerItems(servers []panel.Server) []string {
	items := make([]string, 0, len(servers)+1)
	items = append(items, tui.BackLabel)
	for _, s := range servers {
		items = append(items, s.Name)
	}
	return items
}

// BackupItems builds the backup menu: the back entry followed by "{name} - {created}"
func BackupItems(backups []panel.Backup) []string {
	items := make([]string, 0, len(backups)+1)
	items = append(items, tui.BackLabel)
	for _, b := range backups {
		items = append(items, b.Name+" - "+b.CreatedAt)
	}
	return items
}
