package identity

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/gate"
)

type fakeSource struct {
	current int32
	session int32
	names   map[int32]string
	fail    error
}

func (s *fakeSource) CurrentUser(ctx context.Context) (int32, error) {
	if s.fail != nil {
		return 0, s.fail
	}
	return s.current, nil
}

func (s *fakeSource) SessionUser(ctx context.Context) (int32, error) {
	if s.fail != nil {
		return 0, s.fail
	}
	return s.session, nil
}

func (s *fakeSource) NameOf(ctx context.Context, id int32) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	name, ok := s.names[id]
	if !ok {
		return "", errors.NotFound(errors.PhaseEngine, "name of", "identity dropped")
	}
	return name, nil
}

func TestID_Equality(t *testing.T) {
	pairs := []struct {
		a, b  int32
		equal bool
	}{
		{0, 0, true},
		{42, 42, true},
		{-7, -7, true},
		{42, 43, false},
		{0, -1, false},
	}
	for _, p := range pairs {
		// IDs built from the same native value at different times must
		// compare equal and collide as map keys.
		a, b := ID(p.a), ID(p.b)
		if (a == b) != p.equal {
			t.Fatalf("ID(%d) == ID(%d): got %v, want %v", p.a, p.b, a == b, p.equal)
		}
		m := map[ID]bool{a: true}
		if m[b] != p.equal {
			t.Fatalf("map collision for %d/%d: got %v, want %v", p.a, p.b, m[b], p.equal)
		}
	}
}

func TestID_String(t *testing.T) {
	if ID(42).String() != "acl:42" {
		t.Fatalf("got %q", ID(42).String())
	}
}

func TestCurrentAndSession(t *testing.T) {
	g := gate.New()
	src := &fakeSource{current: 10, session: 20}

	cur, err := Current(context.Background(), g, src)
	if err != nil || cur != ID(10) {
		t.Fatalf("Current = %v, %v; want acl:10", cur, err)
	}
	ses, err := Session(context.Background(), g, src)
	if err != nil || ses != ID(20) {
		t.Fatalf("Session = %v, %v; want acl:20", ses, err)
	}
}

func TestCurrent_HostFailure(t *testing.T) {
	g := gate.New()
	src := &fakeSource{fail: stderrors.New("backend gone")}

	_, err := Current(context.Background(), g, src)
	if !errors.IsKind(err, errors.KindHostCall) {
		t.Fatalf("want host_call, got %v", err)
	}
	if !stderrors.Is(err, src.fail) {
		t.Fatal("native cause must remain reachable")
	}
}

func TestName(t *testing.T) {
	g := gate.New()
	src := &fakeSource{names: map[int32]string{42: "alice"}}

	name, err := Name(context.Background(), g, src, ID(42))
	if err != nil || name != "alice" {
		t.Fatalf("Name = %q, %v; want alice", name, err)
	}

	// A dropped identity is a lookup miss, not a host failure.
	_, err = Name(context.Background(), g, src, ID(9))
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}
