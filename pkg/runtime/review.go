package runtime

import (
	"context"
	"fmt"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"github.com/ormasoftchile/inquest/pkg/schema"
)

// reviewItem is one displayed entry of a review checkpoint.
type reviewItem struct {
	prompt    string
	parameter string
	value     any
}

// resolveReview gathers the answers of the current review window, displays
// them and asks for confirmation. On rejection it returns the in-scope
// parameter names so the dispatcher can delete their results and restart.
// Reviews partition the action list: each window starts right after the
// previous review, so consecutive reviews never re-review the same answers.
func (q *Questioner) resolveReview(ctx context.Context, i int, a schema.Action) (bool, []string, error) {
	items := q.reviewWindow(i, a.Review)

	// Nothing to confirm: accept silently.
	if len(items) == 0 {
		return true, nil, nil
	}

	q.separate()
	q.printer.Header(fmt.Sprintf("%d answer(s) to review:", len(items)))
	for _, it := range items {
		if it.prompt != "" {
			q.printer.Print(it.prompt)
		}
		q.printer.Printf("  [%s]: %s", it.parameter, answer.Stringify(it.value))
	}

	for {
		line, err := q.readLine(ctx, "Verified? [y/n]: ")
		if err != nil {
			return false, nil, err
		}
		ok, err := answer.ParseBool(line)
		if err != nil {
			q.printer.Warn(err.Error())
			continue
		}
		if ok {
			return true, nil, nil
		}
		params := make([]string, len(items))
		for j, it := range items {
			params[j] = it.parameter
		}
		return false, params, nil
	}
}

// reviewWindow collects the reviewable results between the previous review
// action and this one: answered questions always, mapping sub-maps only for
// scope "all", skipped entries and statements never.
func (q *Questioner) reviewWindow(reviewIdx int, scope string) []reviewItem {
	start := 0
	for j := 0; j < reviewIdx; j++ {
		if q.actions[j].Kind() == schema.KindReview {
			start = j + 1
		}
	}

	var items []reviewItem
	for j := start; j < reviewIdx; j++ {
		a := q.actions[j]
		if q.dispositions[j].Skipped() {
			continue
		}
		switch a.Kind() {
		case schema.KindQuestion:
			r, ok := q.store.resolved(a.Parameter)
			if !ok || r.Disposition != DispositionAnswered {
				continue
			}
			items = append(items, reviewItem{
				prompt:    a.Prompt,
				parameter: a.Parameter,
				value:     r.Value,
			})
		case schema.KindMapping:
			if scope != schema.ReviewAll {
				continue
			}
			for _, m := range a.Maps {
				r, ok := q.store.resolved(m.Parameter)
				if !ok || r.Disposition != DispositionAnswered {
					continue
				}
				items = append(items, reviewItem{
					parameter: m.Parameter,
					value:     r.Value,
				})
			}
		}
	}
	return items
}
