// messages.go contains message templates for Telegram.

package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Error and empty-state messages.
const (
	msgInternalError      = "⚠️ エラーが発生しました。しばらくしてから再度お試しください。"
	msgNoLesson           = "📚 現在利用可能なレッスンがありません。"
	msgNoQuiz             = "🧪 現在利用可能なクイズがありません。"
	msgNoReview           = "🔄 現在復習が必要なコンテンツはありません。"
	msgNoActiveQuiz       = "❌ 有効なクイズが見つかりません。再度クイズを受けてください。"
	msgInvalidAnswer      = "❌ 1〜4の数字で回答してください。"
	msgModerated          = "🙏 申し訳ありませんが、その話題にはお答えできません。\nプロンプトエンジニアリングに関する質問をお送りください。"
	msgAIUnavailable      = "⚠️ 現在AIが応答できません。時間をおいて再度お試しください。\n（今回の質問は回数にカウントされていません）"
	msgPaymentUnavailable = "⚠️ 現在プレミアムプランのお申し込みを受け付けていません。"
)

const msgWelcome = "👋 ようこそ！プロンプトエンジニアリング学習Botです。\n" +
	"毎日3回のレッスンと週1回のクイズをお届けします。"

const msgHelp = "🤖 プロンプトエンジニアリング学習Bot\n\n" +
	"📝 利用可能なコマンド：\n\n" +
	"📚 レッスン - 学習コンテンツを表示\n" +
	"🧪 クイズ - 理解度テストを開始\n" +
	"🔄 復習 - 復習コンテンツを表示\n" +
	"📊 進捗 - 学習進捗を確認\n" +
	"📈 統計 - テスト結果を確認\n" +
	"📚 苦手 - 苦手分野を確認\n" +
	"🎯 レベル - 現在のレベルを確認\n" +
	"💪 モチベーション - 励ましメッセージ\n" +
	"💎 プレミアム - プレミアムプランの申し込み・管理\n" +
	"📋 プラン - 現在のプランと残り質問回数\n" +
	"❓ ヘルプ - このメッセージを表示\n\n" +
	"💡 クイズの回答は「1」「2」「3」「4」で送信してください。\n" +
	"💬 それ以外のメッセージはAIへの質問として扱われます。"

const msgPremiumWelcome = "🎉 プレミアムプランへようこそ！\n\n" +
	"✅ アップグレードが完了しました\n\n" +
	"【新しい特典】\n" +
	"🔸 AI質問回数: 3回 → 10回/日\n" +
	"🔸 全機能がご利用可能\n\n" +
	"💬 早速、プロンプトエンジニアリングについて質問してみませんか？"

const msgPremiumCanceled = "📝 プレミアムプランがキャンセルされました\n\n" +
	"お疲れ様でした。プレミアムプランの特典は本日で終了しました。\n\n" +
	"今後は無料プラン（1日3回まで）でのご利用となります。\n\n" +
	"またのご利用をお待ちしております。"

const msgReengagement = "👋 お久しぶりです！\n\n" +
	"しばらく学習が空いていますね。今日は1つだけレッスンを読んでみませんか？\n" +
	"「レッスン」と送信すると、すぐに学習を再開できます。"

// Slot greetings sent before the scheduled lesson.
var slotIntros = map[string]string{
	"morning":   "🌅 おはようございます！今日もプロンプトエンジニアリングを学びましょう！",
	"afternoon": "☀️ 午後の学習時間です！集中してスキルアップしましょう！",
	"evening":   "🌙 夜の学習時間です！今日の復習をしましょう！",
}

var motivationalLines = []string{
	"💪 毎日の小さな積み重ねが、大きな成長につながります！",
	"🚀 今日もプロンプトエンジニアリングのスキルを磨きましょう！",
	"🎯 継続は力なり。今日の学習も頑張りましょう！",
	"🌟 あなたのAI活用力が日々向上しています！",
	"📚 知識は使うことで身につきます。実践を心がけましょう！",
}

// Button labels.
const (
	btnNextQuiz  = "🧪 次のクイズ"
	btnStats     = "📈 統計"
	btnLesson    = "📚 レッスン"
	btnCheckout  = "💎 プレミアムに申し込む"
	btnManage    = "⚙️ プランを管理"
	btnWeakAreas = "📚 苦手分野"
)

// newPlainMessage creates a message without a parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}
