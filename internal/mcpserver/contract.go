package mcpserver

// CadenceFormatContract describes how review cadences are stored in notes.
const CadenceFormatContract = `# Review Cadence Format

A note takes part in reviews when it carries a watch line:

` + "```" + `
meta::watch::2025-01-15
` + "```" + `

The date is when watching started. Reminder notes use ` + "`" + `meta::reminder` + "`" + `;
` + "`" + `meta::reminder_dismissed` + "`" + ` hides a reminder and
` + "`" + `meta::review_overdue_priority` + "`" + ` sorts an overdue note first.

## Cadence line

At most one line per note, anywhere in the content:

` + "```" + `
meta::review_cadence::type=<type>;hours=<n>;minutes=<n>[;time=HH:MM][;days=d,d][;day=<n>][;month=<n>][;start=YYYY-MM-DD][;end=YYYY-MM-DD]
` + "```" + `

| type | fields | meaning |
|------|--------|---------|
| ` + "`" + `every-x-hours` + "`" + ` | hours, minutes | due that long after the last review |
| ` + "`" + `daily` + "`" + ` | time | every day at time |
| ` + "`" + `weekly` + "`" + ` | time, days | on the listed weekdays, 0 = Sunday … 6 = Saturday |
| ` + "`" + `monthly` + "`" + ` | time, day | on day of month 1-31; months without that day are skipped |
| ` + "`" + `yearly` + "`" + ` | time, day, month | once a year on month/day |

## Rules

1. ` + "`" + `time` + "`" + ` is 24-hour ` + "`" + `HH:MM` + "`" + `; a missing time means 09:00.
2. A note without a cadence line is reviewed every 12 hours.
3. An interval note that was never reviewed is due immediately. Calendar
   cadences are first due at their next occurrence.
4. Snoozing sets an absolute next review time that lasts until the note is
   reviewed again.
5. Unknown keys are kept when the line is rewritten.

## Examples

` + "```" + `
meta::review_cadence::type=every-x-hours;hours=48;minutes=0
meta::review_cadence::type=weekly;hours=0;minutes=0;time=08:00;days=1,3,5
meta::review_cadence::type=yearly;hours=0;minutes=0;time=10:00;day=15;month=3
` + "```" + `
`
