package auth_test

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workmate-ai/workmate/pkg/auth"
)

var _ = Describe("Tokens", func() {
	const secret = "unit-test-secret"

	It("round trips the user claims", func() {
		token, err := auth.GenerateToken(secret, 7, "dana@company.com", "manager", time.Hour)
		Expect(err).ToNot(HaveOccurred())
		Expect(token).ToNot(BeEmpty())

		claims, err := auth.ValidateToken(secret, token)
		Expect(err).ToNot(HaveOccurred())
		Expect(claims.UserID).To(Equal(uint(7)))
		Expect(claims.Email).To(Equal("dana@company.com"))
		Expect(claims.Role).To(Equal("manager"))
		Expect(claims.ExpiresAt.Time).To(BeTemporally("~", time.Now().Add(time.Hour), time.Minute))
	})

	It("rejects tokens signed with another secret", func() {
		token, err := auth.GenerateToken("other-secret", 7, "dana@company.com", "employee", time.Hour)
		Expect(err).ToNot(HaveOccurred())

		_, err = auth.ValidateToken(secret, token)
		Expect(err).To(HaveOccurred())
	})

	It("rejects expired tokens", func() {
		token, err := auth.GenerateToken(secret, 7, "dana@company.com", "employee", -time.Minute)
		Expect(err).ToNot(HaveOccurred())

		_, err = auth.ValidateToken(secret, token)
		Expect(err).To(HaveOccurred())
	})

	It("rejects tokens without an HMAC signature", func() {
		claims := auth.Claims{UserID: 7}
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).ToNot(HaveOccurred())

		_, err = auth.ValidateToken(secret, token)
		Expect(err).To(HaveOccurred())
	})

	It("rejects garbage", func() {
		_, err := auth.ValidateToken(secret, "not-a-token")
		Expect(err).To(HaveOccurred())
	})
})
