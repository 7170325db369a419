// Package archive persists interview artifacts after the fact: answer
// recordings as they are submitted and the evaluation document once a
// session finalizes. Archiving is best-effort; a storage failure is logged
// and never fails the interview itself.
package archive
