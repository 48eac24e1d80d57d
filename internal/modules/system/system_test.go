package system

import "testing"

func TestHostInfoHasHostname(t *testing.T) {
	m := &Module{}
	v, err := m.hostInfo(nil)
	if err != nil {
		t.Skipf("host info unavailable: %v", err)
	}
	fields, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("host_info returned %T, want map", v)
	}
	if name, _ := fields["hostname"].(string); name == "" {
		t.Fatalf("hostname is empty: %v", fields)
	}
}

func TestMemoryIsConsistent(t *testing.T) {
	m := &Module{}
	v, err := m.memory(nil)
	if err != nil {
		t.Skipf("memory info unavailable: %v", err)
	}
	fields, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("memory returned %T, want map", v)
	}
	total, _ := fields["mem_total"].(uint64)
	used, _ := fields["mem_used"].(uint64)
	if total == 0 {
		t.Fatalf("mem_total = 0")
	}
	if used > total {
		t.Fatalf("mem_used %d > mem_total %d", used, total)
	}
}

func TestFunctionsListIsStable(t *testing.T) {
	m := &Module{}
	want := []string{"host_info", "memory", "load_average"}
	fns := m.Functions()
	if len(fns) != len(want) {
		t.Fatalf("got %d functions, want %d", len(fns), len(want))
	}
	for i, fn := range fns {
		if fn.Name != want[i] {
			t.Fatalf("function[%d] = %q, want %q", i, fn.Name, want[i])
		}
	}
}
