package world

import (
	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/data"
	"github.com/paledit/paledit/internal/props"
)

const maxSuitabilityRank = 5

// AddedSuitabilities returns the bonus ranks in GotWorkSuitabilityAddRankList.
func (p *Pal) AddedSuitabilities() map[string]int {
	a, ok := props.GetArray(p.param(), fieldAddedSuitability)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(a.Items))
	for _, it := range a.Items {
		suit, ok := props.GetEnum(it, "WorkSuitability")
		if !ok {
			continue
		}
		rank, _ := props.GetInt32(it, "Rank")
		out[suit] = int(rank)
	}
	return out
}

func (p *Pal) condenserTop() int {
	if p.Rank() >= topCondenser {
		return 1
	}
	return 0
}

// WorkSuitabilities returns every suitability with a positive species base,
// bonus ranks and the condenser +1 applied, capped at 5. Nil when the
// species is unknown.
func (p *Pal) WorkSuitabilities() map[string]int {
	info, ok := p.Info()
	if !ok {
		return nil
	}
	added := p.AddedSuitabilities()
	out := make(map[string]int)
	for _, suit := range data.Suitabilities {
		base := info.Suitability(suit)
		if base <= 0 {
			continue
		}
		out[suit] = min(base+added[suit]+p.condenserTop(), maxSuitabilityRank)
	}
	return out
}

// WorkSuitability returns the total rank for one suitability.
func (p *Pal) WorkSuitability(suit string) int {
	return p.WorkSuitabilities()[suit]
}

// SetWorkSuitability stores the bonus needed to reach rank. A rank at or
// below the species base removes the bonus entry.
func (p *Pal) SetWorkSuitability(suit string, rank int) bool {
	if !data.IsSuitability(suit) {
		p.warn("設定適性: 未知的適性", zap.String("suitability", suit))
		return false
	}
	old := p.AddedSuitabilities()[suit]
	if rank <= 0 {
		p.dropSuitability(suit)
		p.changed(fieldAddedSuitability, old, 0)
		return true
	}
	info, ok := p.Info()
	if !ok {
		p.warn("設定適性: 未知的種類", zap.String("species", p.DataKey()))
		return false
	}
	rank = min(rank, maxSuitabilityRank)
	added := rank - (info.Suitability(suit) + p.condenserTop())
	if added <= 0 {
		p.dropSuitability(suit)
	} else {
		p.putSuitability(suit, added)
	}
	p.changed(fieldAddedSuitability, old, max(added, 0))
	return true
}

func (p *Pal) putSuitability(suit string, added int) {
	a := props.EnsureStructArray(p.param(), fieldAddedSuitability)
	for _, it := range a.Items {
		if v, _ := props.GetEnum(it, "WorkSuitability"); v == suit {
			props.SetInt32(it, "Rank", int32(added))
			return
		}
	}
	a.Items = append(a.Items, props.WorkSuitability(suit, int32(added)))
}

func (p *Pal) dropSuitability(suit string) {
	a, ok := props.GetArray(p.param(), fieldAddedSuitability)
	if !ok {
		return
	}
	kept := a.Items[:0]
	for _, it := range a.Items {
		if v, _ := props.GetEnum(it, "WorkSuitability"); v != suit {
			kept = append(kept, it)
		}
	}
	a.Items = kept
	if len(a.Items) == 0 {
		props.Remove(p.param(), fieldAddedSuitability)
	}
}

