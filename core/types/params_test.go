package types_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workmate-ai/workmate/core/types"
)

var _ = Describe("OrderedParams", func() {
	It("keeps keys in insertion order", func() {
		p := types.NewOrderedParams().
			Set("start_date", "2026-08-17").
			Set("end_date", "2026-08-23").
			Set("user_id", 7)
		Expect(p.Keys()).To(Equal([]string{"start_date", "end_date", "user_id"}))
		Expect(p.Len()).To(Equal(3))
	})

	It("overwrites values without moving the key", func() {
		p := types.NewOrderedParams().
			Set("b", 1).
			Set("a", 2).
			Set("b", 3)
		Expect(p.Keys()).To(Equal([]string{"b", "a"}))
		v, ok := p.Get("b")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(3))
	})

	It("preserves wire order across decode and encode", func() {
		raw := `{"z":1,"a":"x","m":[1,2]}`
		var p types.OrderedParams
		Expect(json.Unmarshal([]byte(raw), &p)).To(Succeed())
		Expect(p.Keys()).To(Equal([]string{"z", "a", "m"}))

		out, err := json.Marshal(&p)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(out)).To(Equal(raw))
	})

	It("decodes numbers without losing precision", func() {
		var p types.OrderedParams
		Expect(json.Unmarshal([]byte(`{"id":9007199254740993}`), &p)).To(Succeed())
		v, ok := p.Get("id")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(json.Number("9007199254740993")))
		Expect(p.GetString("id")).To(Equal("9007199254740993"))
	})

	It("rejects anything but a JSON object", func() {
		var p types.OrderedParams
		Expect(json.Unmarshal([]byte(`[1,2]`), &p)).To(MatchError(ContainSubstring("must be a JSON object")))
	})

	It("renders values as text through GetString", func() {
		p := types.NewOrderedParams().Set("user_id", 42)
		Expect(p.GetString("user_id")).To(Equal("42"))
		Expect(p.GetString("missing")).To(Equal(""))
	})

	It("tolerates a nil receiver on read paths", func() {
		var p *types.OrderedParams
		Expect(p.Keys()).To(BeNil())
		Expect(p.Len()).To(Equal(0))
		Expect(p.GetString("anything")).To(Equal(""))
		Expect(p.Map()).To(BeEmpty())
	})
})

var _ = Describe("ActionParams", func() {
	It("reads raw tool arguments", func() {
		params := types.ActionParams{}
		Expect(params.Read(`{"user_id": 7, "notes": "front desk"}`)).To(Succeed())
		Expect(params["notes"]).To(Equal("front desk"))
		Expect(params["user_id"]).To(Equal(float64(7)))
	})

	It("rejects malformed arguments", func() {
		params := types.ActionParams{}
		Expect(params.Read(`{"user_id": `)).ToNot(Succeed())
	})

	It("unmarshals into request structs", func() {
		params := types.ActionParams{"user_id": 7, "notes": "door badge"}
		request := struct {
			UserID uint   `json:"user_id"`
			Notes  string `json:"notes"`
		}{}
		Expect(params.Unmarshal(&request)).To(Succeed())
		Expect(request.UserID).To(Equal(uint(7)))
		Expect(request.Notes).To(Equal("door badge"))
	})
})
