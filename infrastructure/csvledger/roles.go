package csvledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"dotabot/models"
	"dotabot/service"
)

// RoleFile stores each guild's queue role in a server_id,role_id CSV file
type RoleFile struct {
	path  string
	mu    sync.Mutex
	roles map[int64]int64
	order []int64
}

var _ service.GuildSettingsService = (*RoleFile)(nil)

// OpenRoleFile loads the role file at path. A missing file has no roles.
func OpenRoleFile(path string) (*RoleFile, error) {
	rf := &RoleFile{path: path, roles: make(map[int64]int64)}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return rf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open role file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return rf, nil
		}
		return nil, &service.CorruptLedgerError{Line: 1, Field: "header", Err: err}
	}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &service.CorruptLedgerError{Line: line, Field: "row", Err: err}
		}
		guildID, err := parseInt(line, "server_id", row[0])
		if err != nil {
			return nil, err
		}
		roleID, err := parseInt(line, "role_id", row[1])
		if err != nil {
			return nil, err
		}
		if _, ok := rf.roles[guildID]; !ok {
			rf.order = append(rf.order, guildID)
		}
		rf.roles[guildID] = roleID
	}
	return rf, nil
}

// GetOrCreateSettings returns the guild's settings; guilds without a stored role get empty settings
func (rf *RoleFile) GetOrCreateSettings(_ context.Context, guildID int64) (*models.GuildSettings, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	settings := &models.GuildSettings{GuildID: guildID}
	if roleID, ok := rf.roles[guildID]; ok {
		settings.QueueRoleID = &roleID
	}
	return settings, nil
}

// UpdateQueueRole stores roleID for the guild, or removes it when nil
func (rf *RoleFile) UpdateQueueRole(_ context.Context, guildID int64, roleID *int64) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	roles := make(map[int64]int64, len(rf.roles)+1)
	for k, v := range rf.roles {
		roles[k] = v
	}
	order := rf.order
	_, existed := roles[guildID]
	if roleID == nil {
		delete(roles, guildID)
	} else {
		roles[guildID] = *roleID
		if !existed {
			order = append(append([]int64(nil), order...), guildID)
		}
	}

	if err := rf.write(roles, order); err != nil {
		return err
	}
	rf.roles = roles
	rf.order = order
	return nil
}

func (rf *RoleFile) write(roles map[int64]int64, order []int64) (err error) {
	if err := os.MkdirAll(filepath.Dir(rf.path), 0o755); err != nil {
		return fmt.Errorf("failed to create role directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(rf.path), filepath.Base(rf.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write([]string{"server_id", "role_id"}); err != nil {
		return err
	}
	for _, guildID := range order {
		roleID, ok := roles[guildID]
		if !ok {
			continue
		}
		if err = w.Write([]string{strconv.FormatInt(guildID, 10), strconv.FormatInt(roleID, 10)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), rf.path)
}
