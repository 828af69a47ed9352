package telegram

import (
	"fmt"
	"strings"
)

// 图片请求关键词，命中则按图片价计费
var imageKeywords = []string{"image", "photo", "picture", "صورة", "ارسم", "صمم"}

// IsImageRequest 根据关键词判断是否图片请求
func IsImageRequest(text string) bool {
	t := strings.ToLower(text)
	for _, k := range imageKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

func welcomeMessage() string {
	return "👋 <b>Welcome to Zentra AI</b>\n" +
		"Send me any question and I will answer.\n\n" +
		"👋 <b>مرحبًا بك في Zentra AI</b>\n" +
		"أرسل أي سؤال وسأجيب عليه."
}

func subscribeMessage(paymentURL string, userID int64) string {
	return "🚀 <b>Upgrade to Premium</b>\n" +
		"Subscribe to continue using Zentra AI.\n\n" +
		"🚀 <b>الترقية إلى الاشتراك المدفوع</b>\n" +
		"اشترك لمتابعة استخدام Zentra AI.\n\n" +
		fmt.Sprintf("🔗 %s%d", paymentURL, userID)
}

func budgetExhaustedMessage() string {
	return "⚠️ <b>Budget exhausted</b>\n" +
		"Please renew your subscription.\n\n" +
		"⚠️ <b>تم استهلاك الميزانية</b>\n" +
		"يرجى تجديد الاشتراك."
}

func joinChannelMessage() string {
	return "🚫 Please join the channel first.\n🚫 اشترك بالقناة أولًا."
}

func providerErrorMessage() string {
	return "❌ AI service unavailable\n❌ خدمة الذكاء الاصطناعي غير متاحة حاليًا"
}

func answerMessage(reply string) string {
	return fmt.Sprintf("✅ <b>Answer:</b>\n%s\n\n✅ <b>الإجابة:</b>\n%s", reply, reply)
}

func arithmeticMessage(sum int64) string {
	return fmt.Sprintf("✅ Result: %d\n✅ النتيجة: %d", sum, sum)
}

func activatedMessage() string {
	return "🎉 <b>Subscription activated</b>\n🎉 <b>تم تفعيل الاشتراك بنجاح</b>"
}

func expiringMessage() string {
	return "⏳ <b>Your subscription expires within 24 hours</b>\n" +
		"Renew to keep your budget.\n\n" +
		"⏳ <b>ينتهي اشتراكك خلال ٢٤ ساعة</b>\n" +
		"جدّد اشتراكك للاستمرار."
}

func statusMessage(subscribed bool, freeRemain, freeLimit int, budget float64, expiresAt string) string {
	if subscribed {
		return fmt.Sprintf(
			"👑 <b>Premium</b>\n💰 Budget remaining: %.2f\n📅 Expires: %s\n\n"+
				"👑 <b>اشتراك مدفوع</b>\n💰 الميزانية المتبقية: %.2f",
			budget, expiresAt, budget)
	}
	return fmt.Sprintf(
		"🆓 <b>Free plan</b>\n💬 Requests left today: %d/%d\n\n"+
			"🆓 <b>الخطة المجانية</b>\n💬 الطلبات المتبقية اليوم: %d/%d",
		freeRemain, freeLimit, freeRemain, freeLimit)
}

func statsMessage(total, paid, msgsToday int64, totalSpent float64, uptimeMinutes int64) string {
	return fmt.Sprintf(
		"📊 <b>Zentra AI – Admin Stats</b>\n\n"+
			"👥 Total users: %d\n"+
			"👑 Paid users: %d\n"+
			"💬 AI messages today: %d\n"+
			"💵 Total spent: %.2f\n"+
			"⏱ Uptime: %d min\n\n"+
			"📊 <b>إحصائيات Zentra AI</b>\n\n"+
			"👥 المستخدمين: %d\n"+
			"👑 المشتركين: %d\n"+
			"💬 رسائل الذكاء الاصطناعي اليوم: %d\n"+
			"💵 إجمالي الإنفاق: %.2f\n"+
			"⏱ مدة التشغيل: %d دقيقة",
		total, paid, msgsToday, totalSpent, uptimeMinutes,
		total, paid, msgsToday, totalSpent, uptimeMinutes)
}
