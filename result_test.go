package bridge

import "testing"

func TestCallResult_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b CallResult
		want bool
	}{
		{"identical successes", Succeed([]byte("x")), Succeed([]byte("x")), true},
		{"nil vs empty value", Succeed(nil), Succeed([]byte{}), true},
		{"different values", Succeed([]byte("x")), Succeed([]byte("y")), false},
		{"identical failures", Fail("boom"), Fail("boom"), true},
		{"different messages", Fail("boom"), Fail("bang"), false},
		{"success vs failure", Succeed(nil), Fail(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallResult_Failed(t *testing.T) {
	if Succeed(nil).Failed() {
		t.Error("success reports Failed")
	}
	if !Fail("x").Failed() {
		t.Error("failure does not report Failed")
	}
}

func TestStatus_String(t *testing.T) {
	if StatusSuccess.String() != "success" || StatusFailure.String() != "failure" {
		t.Error("unexpected status strings")
	}
}
