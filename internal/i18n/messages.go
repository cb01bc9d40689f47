package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys used by toasts and the terminal front-end.
const (
	MsgLoadProductsFailed = "products.load_failed"
	MsgProductNotFound    = "products.not_found"
	MsgLoginRequired      = "auth.login_required"
	MsgLoginSucceeded     = "auth.login_ok"
	MsgLoginFailed        = "auth.login_failed"
	MsgLoggedOut          = "auth.logged_out"
	MsgRegistered         = "auth.registered"
	MsgOutOfStock         = "cart.out_of_stock"
	MsgInvalidQuantity    = "cart.invalid_quantity"
	MsgCartAdded          = "cart.added"
	MsgCartUpdated        = "cart.updated"
	MsgCartRemoved        = "cart.removed"
	MsgCartCleared        = "cart.cleared"
	MsgCartFailed         = "cart.failed"
	MsgClearCartPrompt    = "cart.clear_prompt"
	MsgWishlistAdded      = "wishlist.added"
	MsgWishlistRemoved    = "wishlist.removed"
	MsgWishlistFailed     = "wishlist.failed"
	MsgOrderPlaced        = "order.placed"
	MsgOrderFailed        = "order.failed"
	MsgOrderCancelled     = "order.cancelled"
	MsgVerifyInvalidCode  = "verify.invalid_code"
	MsgVerifySucceeded    = "verify.ok"
	MsgVerifyFailed       = "verify.failed"
	MsgCodeResent         = "verify.resent"
	MsgResendWait         = "verify.resend_wait"
	MsgRequestFailed      = "request.failed"
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		MsgLoadProductsFailed: "Could not load products. Please try again.",
		MsgProductNotFound:    "Product not found.",
		MsgLoginRequired:      "Please log in to continue.",
		MsgLoginSucceeded:     "Welcome back, %s!",
		MsgLoginFailed:        "Login failed. Check your email and password.",
		MsgLoggedOut:          "You have been logged out.",
		MsgRegistered:         "Account created. We sent a code to %s.",
		MsgOutOfStock:         "This product is out of stock.",
		MsgInvalidQuantity:    "Please choose a quantity between 1 and %d.",
		MsgCartAdded:          "Added to cart.",
		MsgCartUpdated:        "Cart updated.",
		MsgCartRemoved:        "Item removed from cart.",
		MsgCartCleared:        "Cart cleared.",
		MsgCartFailed:         "Could not update your cart. Showing the latest cart.",
		MsgClearCartPrompt:    "Remove every item from your cart?",
		MsgWishlistAdded:      "Added to wishlist.",
		MsgWishlistRemoved:    "Removed from wishlist.",
		MsgWishlistFailed:     "Could not update your wishlist.",
		MsgOrderPlaced:        "Order %s placed.",
		MsgOrderFailed:        "Could not place your order.",
		MsgOrderCancelled:     "Order %s cancelled.",
		MsgVerifyInvalidCode:  "Enter the 6-digit code from your email.",
		MsgVerifySucceeded:    "Email verified.",
		MsgVerifyFailed:       "That code did not work. Try again.",
		MsgCodeResent:         "A new code is on its way.",
		MsgResendWait:         "You can request a new code in %d seconds.",
		MsgRequestFailed:      "Something went wrong. Please try again.",
	},
	language.Arabic: {
		MsgLoadProductsFailed: "تعذر تحميل المنتجات. حاول مرة أخرى.",
		MsgProductNotFound:    "المنتج غير موجود.",
		MsgLoginRequired:      "يرجى تسجيل الدخول للمتابعة.",
		MsgLoginSucceeded:     "مرحباً بعودتك، %s!",
		MsgLoginFailed:        "فشل تسجيل الدخول. تحقق من البريد الإلكتروني وكلمة المرور.",
		MsgLoggedOut:          "تم تسجيل خروجك.",
		MsgRegistered:         "تم إنشاء الحساب. أرسلنا رمزاً إلى %s.",
		MsgOutOfStock:         "هذا المنتج غير متوفر حالياً.",
		MsgInvalidQuantity:    "يرجى اختيار كمية بين 1 و %d.",
		MsgCartAdded:          "تمت الإضافة إلى السلة.",
		MsgCartUpdated:        "تم تحديث السلة.",
		MsgCartRemoved:        "تمت إزالة المنتج من السلة.",
		MsgCartCleared:        "تم إفراغ السلة.",
		MsgCartFailed:         "تعذر تحديث السلة. يتم عرض أحدث نسخة.",
		MsgClearCartPrompt:    "هل تريد إزالة جميع المنتجات من السلة؟",
		MsgWishlistAdded:      "تمت الإضافة إلى المفضلة.",
		MsgWishlistRemoved:    "تمت الإزالة من المفضلة.",
		MsgWishlistFailed:     "تعذر تحديث المفضلة.",
		MsgOrderPlaced:        "تم تقديم الطلب %s.",
		MsgOrderFailed:        "تعذر تقديم طلبك.",
		MsgOrderCancelled:     "تم إلغاء الطلب %s.",
		MsgVerifyInvalidCode:  "أدخل الرمز المكون من 6 أرقام من بريدك.",
		MsgVerifySucceeded:    "تم التحقق من البريد الإلكتروني.",
		MsgVerifyFailed:       "الرمز غير صحيح. حاول مرة أخرى.",
		MsgCodeResent:         "تم إرسال رمز جديد.",
		MsgResendWait:         "يمكنك طلب رمز جديد بعد %d ثانية.",
		MsgRequestFailed:      "حدث خطأ ما. حاول مرة أخرى.",
	},
}

func init() {
	for tag, entries := range catalog {
		for key, msg := range entries {
			if err := message.SetString(tag, key, msg); err != nil {
				panic("i18n: register " + key + ": " + err.Error())
			}
		}
	}
}
