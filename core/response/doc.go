// Package response provides the single-use output channel that relay handlers
// write to, along with the record encoding used by JSON responses.
//
// # Writer
//
// A Writer wraps an http.ResponseWriter and moves from StateOpen to StateClosed
// exactly once. Headers are sent on the first write or on Close, whichever comes
// first. Writes after Close fail with ErrResponseClosed; Close itself is
// idempotent.
//
//	w := response.New(rw)
//	w.Status(http.StatusCreated)
//	_ = w.Send("created")
//	_ = w.Close()
//
// The dispatcher owns Close. Handlers receive the Writer through the
// handler.Response interface, which does not expose it.
//
// # Record Encoding
//
// Encode renders a struct as a flat object of its exported fields:
//
//	type User struct {
//		Id   int
//		Name string
//	}
//
//	data, _ := response.Encode(User{Id: 5, Name: "a"})
//	// {"Id":5,"Name":"a"}
//
// Numbers and bools are unquoted, nil references become null and everything
// else is written as its display string in quotes. Strings are not escaped.
// Values that are not structs fail with ErrNotRecord.
package response
