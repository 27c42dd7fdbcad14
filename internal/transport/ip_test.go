package transport

import "testing"

func TestParseIPv4AndMulticast(t *testing.T) {
	a, ok := ParseIPv4("239.1.2.3")
	if !ok {
		t.Fatal("ParseIPv4 rejected a valid address")
	}
	if !IsMulticast(a) {
		t.Fatal("239.1.2.3 should be multicast")
	}
	if a != ([4]byte{239, 1, 2, 3}) {
		t.Fatalf("got %v", a)
	}

	if _, ok := ParseIPv4("256.0.0.1"); ok {
		t.Fatal("accepted an octet > 255")
	}
	if _, ok := ParseIPv4("1.2.3"); ok {
		t.Fatal("accepted a 3-octet address")
	}
}

func TestParseEndpoint(t *testing.T) {
	ep, ok := ParseEndpoint("127.0.0.1:12345")
	if !ok {
		t.Fatal("ParseEndpoint rejected a valid endpoint")
	}
	if ep.IP != ([4]byte{127, 0, 0, 1}) || ep.Port != 12345 {
		t.Fatalf("got %+v", ep)
	}

	for _, bad := range []string{"1.2.3:80", "1.2.3.4:", "1.2.3.4:70000"} {
		if _, ok := ParseEndpoint(bad); ok {
			t.Fatalf("accepted invalid endpoint %q", bad)
		}
	}
}

func TestEndpointStringRoundTrip(t *testing.T) {
	ep, _ := ParseEndpoint("10.0.0.5:9000")
	if ep.String() != "10.0.0.5:9000" {
		t.Fatalf("String() = %q", ep.String())
	}
}
