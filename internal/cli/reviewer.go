package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/reconcile"
	"github.com/centsible/centsible/internal/service"
)

// Reviewer drives the interactive review loop for one import session. It
// owns the session state machine (reviewing, committing, committed or
// canceled); the reconcile engine stays a pure value transformer underneath.
type Reviewer struct {
	reader    *bufio.Reader
	writer    io.Writer
	committer *reconcile.Committer
}

// NewReviewer creates a reviewer with the given streams. Nil streams
// default to stdin/stdout.
func NewReviewer(reader io.Reader, writer io.Writer, committer *reconcile.Committer) *Reviewer {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Reviewer{
		reader:    bufio.NewReader(reader),
		writer:    writer,
		committer: committer,
	}
}

// Run reviews the session until the user commits or cancels. After a
// successful commit the loop exits immediately; the batch is never offered
// for a second commit. A cancel returns zero stats and no error.
func (r *Reviewer) Run(ctx context.Context, session *reconcile.Session) (service.ImportStats, error) {
	start := time.Now()

	if len(session.Batch) == 0 {
		fmt.Fprintln(r.writer, FormatWarning("No transactions were extracted from the statement."))
		return service.ImportStats{}, nil
	}

	for {
		select {
		case <-ctx.Done():
			return service.ImportStats{}, ctx.Err()
		default:
		}

		r.renderBatch(session)

		choice, err := r.promptLine(ctx, "[e]dit  [t]oggle  [a]ll  [n]one  [c]ommit  [q]uit")
		if err != nil {
			return service.ImportStats{}, err
		}

		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "e":
			if err := r.editCandidate(ctx, session); err != nil {
				return service.ImportStats{}, err
			}
		case "t":
			if err := r.toggleCandidate(ctx, session); err != nil {
				return service.ImportStats{}, err
			}
		case "a":
			session.Batch = session.Batch.SetAllSelected(true)
		case "n":
			session.Batch = session.Batch.SetAllSelected(false)
		case "c":
			imported, done, err := r.commit(ctx, session)
			if err != nil {
				return service.ImportStats{}, err
			}
			if done {
				return service.ImportStats{
					Imported: imported,
					Skipped:  len(session.Batch) - imported,
					Duration: time.Since(start),
				}, nil
			}
		case "q":
			fmt.Fprintln(r.writer, SubtleStyle.Render("Import canceled; nothing was saved."))
			return service.ImportStats{Duration: time.Since(start)}, nil
		default:
			fmt.Fprintln(r.writer, FormatWarning("Unknown command."))
		}
	}
}

// commit validates and persists the batch. Validation and persistence
// failures are shown to the user and leave the session in review for
// correction or retry; only those failures return done=false without error.
func (r *Reviewer) commit(ctx context.Context, session *reconcile.Session) (int, bool, error) {
	imported, err := r.committer.Commit(ctx, session.Batch)
	if err != nil {
		switch {
		case common.IsValidationError(err):
			fmt.Fprintln(r.writer, FormatError(err.Error()))
		case errors.Is(err, common.ErrPersistenceFailed):
			fmt.Fprintln(r.writer, FormatError("Saving failed; your review is unchanged. Fix the connection and commit again."))
			fmt.Fprintln(r.writer, SubtleStyle.Render(err.Error()))
		default:
			return 0, false, err
		}
		return 0, false, nil
	}

	fmt.Fprintln(r.writer, FormatSuccess(fmt.Sprintf("Imported %d expenses.", imported)))
	return imported, true, nil
}

func (r *Reviewer) editCandidate(ctx context.Context, session *reconcile.Session) error {
	index, ok, err := r.promptRow(ctx, session)
	if err != nil || !ok {
		return err
	}

	field, value, ok, err := r.promptFieldValue(ctx, session)
	if err != nil || !ok {
		return err
	}

	updated, err := session.Batch.UpdateCandidate(index, field, value)
	if err != nil {
		if errors.Is(err, common.ErrBadFieldValue) {
			fmt.Fprintln(r.writer, FormatWarning(err.Error()))
			return nil
		}
		return err
	}

	session.Batch = updated
	return nil
}

func (r *Reviewer) toggleCandidate(ctx context.Context, session *reconcile.Session) error {
	index, ok, err := r.promptRow(ctx, session)
	if err != nil || !ok {
		return err
	}

	value := strconv.FormatBool(!session.Batch[index].Selected)
	updated, err := session.Batch.UpdateCandidate(index, reconcile.FieldSelected, value)
	if err != nil {
		return err
	}

	session.Batch = updated
	return nil
}

// promptRow asks for a 1-based row number. A blank answer aborts the edit
// without error.
func (r *Reviewer) promptRow(ctx context.Context, session *reconcile.Session) (int, bool, error) {
	answer, err := r.promptLine(ctx, fmt.Sprintf("Row (1-%d, blank to cancel)", len(session.Batch)))
	if err != nil {
		return 0, false, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, false, nil
	}

	row, err := strconv.Atoi(answer)
	if err != nil || row < 1 || row > len(session.Batch) {
		fmt.Fprintln(r.writer, FormatWarning("Not a valid row number."))
		return 0, false, nil
	}

	return row - 1, true, nil
}

func (r *Reviewer) promptFieldValue(ctx context.Context, session *reconcile.Session) (reconcile.Field, string, bool, error) {
	answer, err := r.promptLine(ctx, "Field: [d]ate  de[s]cription  a[m]ount  cate[g]ory  [p]ayment method")
	if err != nil {
		return "", "", false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "d":
		value, err := r.promptLine(ctx, "New date (YYYY-MM-DD)")
		return reconcile.FieldDate, value, true, err
	case "s":
		value, err := r.promptLine(ctx, "New description")
		return reconcile.FieldDescription, value, true, err
	case "m":
		value, err := r.promptLine(ctx, "New amount")
		return reconcile.FieldAmount, value, true, err
	case "g":
		id, ok, err := r.promptCategory(ctx, session)
		return reconcile.FieldCategory, id, ok, err
	case "p":
		id, ok, err := r.promptMethod(ctx, session)
		return reconcile.FieldPaymentMethod, id, ok, err
	case "":
		return "", "", false, nil
	default:
		fmt.Fprintln(r.writer, FormatWarning("Unknown field."))
		return "", "", false, nil
	}
}

func (r *Reviewer) promptCategory(ctx context.Context, session *reconcile.Session) (string, bool, error) {
	for i, cat := range session.Categories {
		fmt.Fprintf(r.writer, "  [%d] %s\n", i+1, cat.Name)
	}

	answer, err := r.promptLine(ctx, "Category number (blank to clear)")
	if err != nil {
		return "", false, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", true, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(session.Categories) {
		fmt.Fprintln(r.writer, FormatWarning("Not a valid category."))
		return "", false, nil
	}

	return session.Categories[n-1].ID, true, nil
}

func (r *Reviewer) promptMethod(ctx context.Context, session *reconcile.Session) (string, bool, error) {
	for i, m := range session.Methods {
		fmt.Fprintf(r.writer, "  [%d] %s (%s)\n", i+1, m.Name, m.Type)
	}

	answer, err := r.promptLine(ctx, "Payment method number (blank to clear)")
	if err != nil {
		return "", false, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", true, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(session.Methods) {
		fmt.Fprintln(r.writer, FormatWarning("Not a valid payment method."))
		return "", false, nil
	}

	return session.Methods[n-1].ID, true, nil
}

func (r *Reviewer) promptLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := fmt.Fprint(r.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := r.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Reviewer) renderBatch(session *reconcile.Session) {
	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, FormatTitle("Review & Import"))

	header := fmt.Sprintf("    %-3s %-10s %-32s %10s  %-16s %-14s",
		"", "Date", "Description", "Amount", "Category", "Method")
	fmt.Fprintln(r.writer, TableHeaderStyle.Render(header))

	var total float64
	selected := 0
	for i, c := range session.Batch {
		mark := " "
		if c.Selected {
			mark = SuccessIcon
			selected++
			total += c.Amount
		}

		date := "—"
		if c.HasValidDate() {
			date = c.Date.Format(model.DateFormat)
		}

		row := fmt.Sprintf("%3d %-3s %-10s %-32s %10.2f  %-16s %-14s",
			i+1, mark, date, truncate(c.Description, 32), c.Amount,
			r.categoryName(session, c.CategoryID), r.methodName(session, c.PaymentMethodID))

		if c.Flagged {
			row += "  " + WarningStyle.Render(WarningIcon+" "+c.FlagReason)
		}
		if !c.Selected {
			row = SubtleStyle.Render(row)
		}
		fmt.Fprintln(r.writer, row)
	}

	fmt.Fprintln(r.writer, SubtleStyle.Render(
		fmt.Sprintf("%d of %d selected, %.2f total", selected, len(session.Batch), total)))
}

func (r *Reviewer) categoryName(session *reconcile.Session, id *string) string {
	if id == nil {
		return ErrorStyle.Render("(none)")
	}
	for _, cat := range session.Categories {
		if cat.ID == *id {
			return cat.Name
		}
	}
	return *id
}

func (r *Reviewer) methodName(session *reconcile.Session, id *string) string {
	if id == nil {
		return ErrorStyle.Render("(none)")
	}
	for _, m := range session.Methods {
		if m.ID == *id {
			return m.Name
		}
	}
	return *id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
