package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/config"
	"github.com/paledit/paledit/internal/core/event"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/persist"
	"github.com/paledit/paledit/internal/scripting"
	"github.com/paledit/paledit/internal/world"
)

func cmdInfo(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	s, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	printSection("玩家")
	for _, pl := range s.state.Players() {
		printValue(pl.String(), fmt.Sprintf("Lv%d · %d 帕魯", pl.Level(), len(pl.Pals())))
	}
	printSection("公會")
	for _, g := range s.state.Guilds().All() {
		printStat(g.Name, g.MemberCount())
	}
	printStat("無主帕魯", len(s.state.OwnerlessPals()))
	return nil
}

func cmdPals(ctx context.Context, cfg *config.Config, log *zap.Logger, player string) error {
	s, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	for _, pl := range s.state.Players() {
		if player != "" && s.state.PlayerByID(player) != pl {
			continue
		}
		printSection(pl.String())
		for _, p := range pl.SortedPals() {
			printValue(p.DisplayName(), palSummary(p))
		}
	}
	return nil
}

func palSummary(p *world.Pal) string {
	hp, ok := p.MaxHP()
	if !ok {
		return fmt.Sprintf("Lv%d", p.Level())
	}
	return fmt.Sprintf("Lv%d ★%d HP %d", p.Level(), p.Rank()-1, hp/1000)
}

func cmdRun(ctx context.Context, cfg *config.Config, log *zap.Logger, files []string, dryRun bool) error {
	s, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	engine := scripting.NewEngine(log)
	defer engine.Close()
	engine.Bind(s.state)

	printSection("腳本")
	if len(files) == 0 {
		n, err := engine.RunDir(cfg.Scripting.Dir)
		if err != nil {
			return err
		}
		printStat("已執行", n)
	}
	for _, f := range files {
		if err := engine.RunFile(f); err != nil {
			return err
		}
		printOK(filepath.Base(f))
	}
	hits, err := engine.CallPalHook("on_pal")
	if err != nil {
		return err
	}
	if hits > 0 {
		printStat("on_pal", hits)
	}

	if dryRun {
		if err := s.flush(ctx); err != nil {
			return err
		}
		printReady("試執行完成，未寫入存檔")
		return nil
	}
	if err := s.commit(ctx); err != nil {
		return err
	}
	printReady("編輯完成")
	return nil
}

// cmdRoundTrip checks that Level.sav decodes and re-encodes to the same
// inner buffer and survives recompression.
func cmdRoundTrip(cfg *config.Config, log *zap.Logger) error {
	path := filepath.Join(cfg.Save.Dir, levelFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	inner, c, err := gvas.Decompress(raw, cfg.Save.MaxInflated)
	if err != nil {
		return err
	}
	doc, err := gvas.Decode(inner, log)
	if err != nil {
		return err
	}
	enc, err := doc.Encode()
	if err != nil {
		return err
	}

	printSection("往返")
	printStat("壓縮輪數", c.Rounds)
	printStat("內部位元組", len(inner))
	if !bytes.Equal(inner, enc) {
		return fmt.Errorf("round trip mismatch: %d bytes in, %d bytes out", len(inner), len(enc))
	}
	printOK("內部緩衝一致")

	packed, err := gvas.Compress(enc, c)
	if err != nil {
		return err
	}
	again, c2, err := gvas.Decompress(packed, cfg.Save.MaxInflated)
	if err != nil {
		return err
	}
	if !bytes.Equal(again, inner) || c2.Rounds != c.Rounds {
		return fmt.Errorf("recompressed save does not decode to the same buffer")
	}
	printOK("重新壓縮一致")
	return nil
}

func cmdHistory(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: history <pal|player> <id>")
	}
	kind := event.EntityKind(args[0])
	if kind != event.EntityPal && kind != event.EntityPlayer {
		return fmt.Errorf("unknown entity kind: %s", args[0])
	}
	db, err := persist.Open(ctx, cfg.Journal.Path, log)
	if err != nil {
		return err
	}
	defer db.Close()

	changes, err := persist.NewJournalRepo(db).History(ctx, kind, args[1])
	if err != nil {
		return err
	}
	printSection(args[1])
	for _, c := range changes {
		printValue(c.CreatedAt.Format("2006-01-02 15:04:05")+" "+c.Field, c.Old+" → "+c.New)
	}
	printStat("記錄", len(changes))
	return nil
}
