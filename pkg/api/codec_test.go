package api

import (
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/emptypb"
)

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{name: codecNameJSON}

	data, err := codec.Marshal(&MarkPaidRequest{BillID: "b1", UserID: "u1"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"bill_id":"b1","user_id":"u1"}` {
		t.Errorf("unexpected encoding %s", data)
	}

	var req MarkPaidRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.BillID != "b1" || req.UserID != "u1" {
		t.Errorf("unexpected message %+v", req)
	}

	empty, err := codec.Marshal(&emptypb.Empty{})
	if err != nil {
		t.Fatalf("Marshal(Empty) failed: %v", err)
	}
	if string(empty) != "{}" {
		t.Errorf("expected {} for Empty, got %s", empty)
	}
	if err := codec.Unmarshal(nil, &emptypb.Empty{}); err != nil {
		t.Errorf("Unmarshal of empty body failed: %v", err)
	}

	err = codec.Unmarshal([]byte("{"), &req)
	if err == nil || !strings.Contains(err.Error(), "MarkPaidRequest") {
		t.Errorf("expected error naming the message type, got %v", err)
	}
}

func TestIsLedgerProcedure(t *testing.T) {
	if !IsLedgerProcedure(BillServiceMarkPaidProcedure) {
		t.Error("expected bill procedure to match")
	}
	if IsLedgerProcedure("/metrics") {
		t.Error("expected /metrics not to match")
	}
}
