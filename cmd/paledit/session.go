package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/config"
	"github.com/paledit/paledit/internal/core/event"
	"github.com/paledit/paledit/internal/data"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/gvas/wire"
	"github.com/paledit/paledit/internal/persist"
	"github.com/paledit/paledit/internal/world"
)

const levelFile = "Level.sav"

// saveFile is one compressed file as read from disk.
type saveFile struct {
	path string
	raw  []byte
	save *gvas.Save
}

// session owns every file handle and store for one edit run.
type session struct {
	cfg *config.Config
	log *zap.Logger

	level   *saveFile
	players map[gvas.GUID]*saveFile

	bus   *event.Bus
	state *world.State

	db        *persist.DB
	journal   *persist.JournalRepo
	snapshots *persist.SnapshotRepo
}

func readSave(path string, limit int64, log *zap.Logger) (*saveFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := gvas.Load(raw, limit, log)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &saveFile{path: path, raw: raw, save: s}, nil
}

func playerDir(cfg config.SaveConfig) string {
	if filepath.IsAbs(cfg.PlayerDir) {
		return cfg.PlayerDir
	}
	return filepath.Join(cfg.Dir, cfg.PlayerDir)
}

// loadPlayerSaves reads Players/<uid>.sav. Files whose name is not a player
// uid are skipped.
func loadPlayerSaves(cfg config.SaveConfig, log *zap.Logger) (map[gvas.GUID]*saveFile, error) {
	out := make(map[gvas.GUID]*saveFile)
	dir := playerDir(cfg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read player dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sav" {
			continue
		}
		uid, err := wire.ParseGUID(strings.TrimSuffix(name, ".sav"))
		if err != nil {
			log.Debug("跳過玩家檔案", zap.String("file", name))
			continue
		}
		f, err := readSave(filepath.Join(dir, name), cfg.MaxInflated, log)
		if err != nil {
			log.Warn("載入玩家失敗", zap.String("file", name), zap.Error(err))
			continue
		}
		out[uid] = f
	}
	return out, nil
}

func openSession(ctx context.Context, cfg *config.Config, log *zap.Logger) (*session, error) {
	s := &session{cfg: cfg, log: log, bus: event.NewBus()}

	printSection("資料表")
	tables, err := data.LoadTables(cfg.Data.Dir, cfg.I18n.Language)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	printStat("帕魯種類", tables.Pals.Count())
	printStat("主動技能", tables.Actives.Count())
	printStat("被動技能", tables.Passives.Count())
	printStat("科技", tables.Techs.Count())
	printValue("語言", tables.Language())

	printSection("存檔")
	s.level, err = readSave(filepath.Join(cfg.Save.Dir, levelFile), cfg.Save.MaxInflated, log)
	if err != nil {
		return nil, err
	}
	s.players, err = loadPlayerSaves(cfg.Save, log)
	if err != nil {
		return nil, err
	}
	printStat("壓縮輪數", s.level.save.Container.Rounds)
	printStat("玩家存檔", len(s.players))

	event.Subscribe(s.bus, func(e event.FieldChanged) {
		log.Debug("欄位變更",
			zap.String("entity", string(e.Entity)), zap.String("id", e.ID),
			zap.String("field", e.Field), zap.String("old", e.Old), zap.String("new", e.New))
	})
	event.Subscribe(s.bus, func(e event.SaveLoaded) {
		log.Info("存檔載入完成", zap.String("path", e.Path), zap.Int("size", e.Size),
			zap.Int("rounds", e.Rounds), zap.String("digest", e.Digest))
	})
	event.Subscribe(s.bus, func(e event.SaveWritten) {
		log.Info("存檔寫入完成", zap.String("path", e.Path), zap.Int("size", e.Size),
			zap.Int("rounds", e.Rounds), zap.String("digest", e.Digest))
	})

	if cfg.Journal.Enabled {
		if err := s.openJournal(ctx); err != nil {
			s.close()
			return nil, err
		}
	}

	playerRoots := make(map[gvas.GUID]*gvas.Properties, len(s.players))
	for uid, f := range s.players {
		playerRoots[uid] = f.save.Doc.Properties
	}
	s.state, err = world.Load(s.level.save.Doc, world.Options{
		Lookup:      tables,
		Log:         log,
		Bus:         s.bus,
		PlayerSaves: playerRoots,
	})
	if err != nil {
		s.close()
		return nil, err
	}
	for _, f := range s.allFiles() {
		event.Emit(s.bus, event.SaveLoaded{
			Path: f.path, Size: len(f.raw), Rounds: f.save.Container.Rounds, Digest: persist.Digest(f.raw),
		})
	}
	s.bus.Flush()

	printStat("玩家", s.state.PlayerCount())
	printStat("帕魯", s.state.PalCount())
	printStat("公會", s.state.Guilds().Count())
	return s, nil
}

func (s *session) openJournal(ctx context.Context) error {
	db, err := persist.Open(ctx, s.cfg.Journal.Path, s.log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	s.db = db
	s.journal = persist.NewJournalRepo(db)
	s.journal.Attach(s.bus)
	s.snapshots = persist.NewSnapshotRepo(db, s.journal.Session())

	for _, f := range s.allFiles() {
		modified, err := s.snapshots.ModifiedSinceSave(ctx, f.path, f.raw)
		if err != nil {
			return err
		}
		if modified {
			s.log.Warn("存檔在上次編輯後被修改", zap.String("path", f.path))
		}
		if _, err := s.snapshots.Record(ctx, persist.SnapshotLoad, f.path, f.raw, f.save.Container.Rounds); err != nil {
			return err
		}
	}
	printOK("編輯日誌已開啟")
	return nil
}

// allFiles returns Level.sav first, then the player saves by path.
func (s *session) allFiles() []*saveFile {
	players := make([]*saveFile, 0, len(s.players))
	for _, f := range s.players {
		players = append(players, f)
	}
	slices.SortFunc(players, func(a, b *saveFile) int { return strings.Compare(a.path, b.path) })
	return append([]*saveFile{s.level}, players...)
}

// flush delivers queued events and writes them to the journal.
func (s *session) flush(ctx context.Context) error {
	s.bus.Flush()
	if s.journal == nil {
		return nil
	}
	n, err := s.journal.Flush(ctx)
	if err != nil {
		return fmt.Errorf("journal flush: %w", err)
	}
	if n > 0 {
		printStat("日誌記錄", n)
	}
	return nil
}

// commit finalizes new pal bookkeeping, then encodes and writes every file.
func (s *session) commit(ctx context.Context) error {
	s.state.SaveNewPalRecords()
	if err := s.flush(ctx); err != nil {
		return err
	}

	printSection("寫入")
	for _, f := range s.allFiles() {
		out, err := f.save.Marshal()
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.path, err)
		}
		if err := writeFile(f.path, f.raw, out, s.cfg.Save.Backup); err != nil {
			return err
		}
		if s.snapshots != nil {
			if _, err := s.snapshots.Record(ctx, persist.SnapshotSave, f.path, out, f.save.Container.Rounds); err != nil {
				return err
			}
		}
		event.Emit(s.bus, event.SaveWritten{
			Path: f.path, Size: len(out), Rounds: f.save.Container.Rounds, Digest: persist.Digest(out),
		})
		f.raw = out
		printOK(filepath.Base(f.path))
	}
	s.bus.Flush()
	return nil
}

// writeFile replaces path with data, keeping the previous bytes in
// path.bak when backup is set.
func writeFile(path string, prev, data []byte, backup bool) error {
	if backup {
		if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
			return fmt.Errorf("backup %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (s *session) close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("關閉編輯日誌失敗", zap.Error(err))
		}
	}
}
