package ui

import (
	"context"

	"github.com/Joik2ww/FileOrganizer/pkg/executor"
)

// GroupConfirmer presents each duplicate group on the console and asks
// whether to delete its surplus copies. The default answer is no.
type GroupConfirmer struct {
	p *Prompter
}

// NewGroupConfirmer returns an executor.Confirmer backed by p.
func NewGroupConfirmer(p *Prompter) *GroupConfirmer {
	return &GroupConfirmer{p: p}
}

func (c *GroupConfirmer) ConfirmGroup(ctx context.Context, view executor.GroupView) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.p.Println()
	c.p.Printf("%s", FormatDecision(view.Index, view.Total, view.Group, view.Decision))
	return c.p.Confirm("Delete the duplicates in this group?", false)
}
